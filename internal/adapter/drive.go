package adapter

import (
	"github.com/mapxn/koodo-reader/internal/config"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
)

// NewDrive selects and constructs the configured drive backend. Backend
// choice is an explicit construction-time decision; both backends
// satisfy identical [store.Drive] semantics.
func NewDrive(cfg config.Drive, log *logger.Logger) (store.Drive, error) {
	switch cfg.Backend {
	case "webdav":
		return NewWebdavDrive(cfg, log)
	case "folder":
		return store.NewLocalDrive(cfg.Folder, log)
	default:
		return nil, ErrNoBackend
	}
}
