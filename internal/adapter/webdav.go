package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mapxn/koodo-reader/internal/config"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/models"
)

// webdavDrive is the HTTP implementation of [store.Drive], speaking a
// WebDAV-style object API: objects live at /<folder>/<name>, a GET on
// the folder itself returns a JSON array of object names.
type webdavDrive struct {
	client *resty.Client
	logger *logger.Logger
}

// NewWebdavDrive constructs an HTTP drive from the drive configuration.
// It normalises and validates the base URL, applies the request timeout,
// and attaches the bearer token when one is configured.
func NewWebdavDrive(cfg config.Drive, log *logger.Logger) (store.Drive, error) {
	baseURL, err := normalizeBaseURL(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid drive address: %w", err)
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)
	if cfg.Token != "" {
		cli.SetAuthToken(cfg.Token)
	}

	return &webdavDrive{client: cli, logger: log}, nil
}

func (d *webdavDrive) List(ctx context.Context, folder models.BlobFolder) ([]string, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		Get("/" + string(folder) + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrTransient, folder, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	var names []string
	if err = json.Unmarshal(resp.Body(), &names); err != nil {
		return nil, fmt.Errorf("decode folder listing %s: %w", folder, err)
	}
	return names, nil
}

func (d *webdavDrive) Upload(ctx context.Context, name string, folder models.BlobFolder, data []byte) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(objectPath(folder, name))
	if err != nil {
		return fmt.Errorf("%w: upload %s: %v", ErrTransient, name, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (d *webdavDrive) Download(ctx context.Context, name string, folder models.BlobFolder) ([]byte, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		Get(objectPath(folder, name))
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", ErrTransient, name, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, store.ErrBlobNotFound
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return resp.Body(), nil
}

func (d *webdavDrive) Delete(ctx context.Context, name string, folder models.BlobFolder) error {
	resp, err := d.client.R().
		SetContext(ctx).
		Delete(objectPath(folder, name))
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrTransient, name, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// Absent object: deletion already took effect, keep idempotent.
		return nil
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func objectPath(folder models.BlobFolder, name string) string {
	return "/" + string(folder) + "/" + url.PathEscape(name)
}

// mapHTTPError classifies a non-2xx drive response into the adapter's
// error taxonomy.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		code == http.StatusPaymentRequired || code == http.StatusInsufficientStorage:
		return fmt.Errorf("%w: http %d: %s", ErrQuotaOrAuth, code, body)
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
	default:
		return fmt.Errorf("http %d: %s", code, body)
	}
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
