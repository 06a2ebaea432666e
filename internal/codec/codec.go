// Package codec normalizes binary cover and book payloads between their
// inline data-URL form (as stored inside record payloads) and typed raw
// bytes with a detected image format. It is pure and performs no I/O.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPayload is returned when input is neither a recognized
// inline-encoded image nor a byte sequence matching a known magic-number
// signature. Callers treat it as non-retryable.
var ErrInvalidPayload = errors.New("invalid content payload")

// ExtUnknown is the sentinel extension for content whose signature is not
// in the detection table. It is non-fatal but non-authoritative: callers
// must not derive format decisions from it.
const ExtUnknown = "unknown"

// signature maps a magic-number prefix to a file extension. Order
// matters: longer prefixes are checked first so the WebP extended
// signature wins over shorter matches.
type signature struct {
	prefix []byte
	ext    string
}

// Detection table: PNG, the JPEG SOI variants, GIF, BMP, both TIFF byte
// orders, WebP (RIFF container and extended signature), XML-prologue SVG
// and ICO.
var signatures = []signature{
	{[]byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}, "webp"},
	{[]byte{0x3c, 0x3f, 0x78, 0x6d, 0x6c}, "svg"},
	{[]byte{0x89, 0x50, 0x4e, 0x47}, "png"},
	{[]byte{0xff, 0xd8, 0xff, 0xe0}, "jpg"},
	{[]byte{0xff, 0xd8, 0xff, 0xe1}, "jpg"},
	{[]byte{0xff, 0xd8, 0xff, 0xdb}, "jpg"},
	{[]byte{0xff, 0xd8, 0xff, 0xe2}, "jpg"},
	{[]byte{0x47, 0x49, 0x46, 0x38}, "gif"},
	{[]byte{0x49, 0x49, 0x2a, 0x00}, "tiff"},
	{[]byte{0x4d, 0x4d, 0x00, 0x2a}, "tiff"},
	{[]byte{0x52, 0x49, 0x46, 0x46}, "webp"},
	{[]byte{0x00, 0x00, 0x01, 0x00}, "ico"},
	{[]byte{0x42, 0x4d}, "bmp"},
}

var dataURLRe = regexp.MustCompile(`^data:(image/\w+);base64,`)

// DetectExtension sniffs the magic-number table and returns the matching
// extension, or ExtUnknown when no signature matches.
func DetectExtension(data []byte) string {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.ext
		}
	}
	return ExtUnknown
}

// Normalize converts raw image content into bytes plus a detected
// extension. Three input shapes are accepted:
//
//   - a data URL ("data:image/png;base64,..."): the declared mime wins,
//     falling back to signature detection when the subtype is missing;
//   - a bare base64 string: decoded, then signature-detected;
//   - raw bytes: signature-detected.
//
// An inline-encoded payload with an unrecognized signature yields
// ExtUnknown without error; raw bytes with an unrecognized signature fail
// with ErrInvalidPayload.
func Normalize(raw []byte) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrInvalidPayload)
	}

	s := string(raw)
	if strings.HasPrefix(s, "data:") {
		return normalizeDataURL(s)
	}

	if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s)); err == nil && len(decoded) > 0 {
		// A decodable base64 string counts as a recognized inline
		// encoding, so an unknown signature stays non-fatal.
		return decoded, DetectExtension(decoded), nil
	}

	ext := DetectExtension(raw)
	if ext == ExtUnknown {
		return nil, "", fmt.Errorf("%w: unrecognized byte signature", ErrInvalidPayload)
	}
	return raw, ext, nil
}

func normalizeDataURL(s string) ([]byte, string, error) {
	m := dataURLRe.FindStringSubmatch(s)
	if m == nil {
		return nil, "", fmt.Errorf("%w: malformed data url", ErrInvalidPayload)
	}

	payload := s[len(m[0]):]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ext := strings.TrimPrefix(m[1], "image/")
	if ext == "" || ext == ExtUnknown {
		ext = DetectExtension(decoded)
	}
	return decoded, ext, nil
}

// Materialize is the inverse of Normalize: it renders bytes with a known
// extension back into a displayable inline data URL. Used when content
// must be shown without a durable blob, e.g. a remote-only cover preview.
func Materialize(data []byte, ext string) string {
	if ext == "" {
		ext = DetectExtension(data)
	}
	return "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// BlobName derives the storage object name for a record's binary
// content. The "<key>.<extension>" form is part of the wire contract
// with every drive backend and must stay stable across versions.
func BlobName(key, ext string) string {
	return key + "." + ext
}

// SplitBlobName splits a storage object name back into record key and
// extension. Names without an extension return the whole name as key and
// an empty extension.
func SplitBlobName(name string) (key, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
