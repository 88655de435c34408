package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/quire/internal/docstore"
	"github.com/starford/quire/internal/editor"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/templates"
)

// core is the wired editing engine shared by the HTTP and MCP frontends.
type core struct {
	fs      *storage.FS // nil unless the fs backend is used
	db      *index.DB   // nil when the index is disabled
	broker  *sse.Broker
	session *session.Controller
	service *editor.Service
	closers []func() error
}

func (c *core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// reload picks up documents changed outside this process.
func (c *core) reload(logger *slog.Logger) {
	c.session.Reload()
	if c.db != nil {
		if err := index.Sync(c.db, c.session.State().Documents, logger); err != nil {
			logger.Warn("reload: index sync failed", slog.String("error", err.Error()))
		}
	}
	c.broker.Publish(sse.Event{Type: "documents.changed", Data: map[string]string{"source": "external"}})
}

func buildCore(cfg *Config, logger *slog.Logger) (*core, error) {
	c := &core{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	backend, err := c.openBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	store := docstore.New(backend, docstore.WithLogger(logger))

	tpls, err := loadTemplates(cfg.Templates)
	if err != nil {
		return nil, err
	}

	var idx index.DocumentIndex
	if cfg.Index.Enabled() {
		if dir := filepath.Dir(cfg.Index.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create index dir: %w", err)
			}
		}
		db, err := index.Open(cfg.Index.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		c.db = db
		c.closers = append(c.closers, db.Close)
		idx = db
	}

	docs := store.GetAll()
	known := make([]string, len(docs))
	for i, d := range docs {
		known[i] = d.ID
	}
	c.broker = sse.NewBroker(0, known...)
	c.closers = append(c.closers, func() error { c.broker.Close(); return nil })

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHistorySize(cfg.History.MaxSize),
		session.WithListener(c.broker),
	}
	if c.db != nil {
		opts = append(opts, session.WithListener(index.NewListener(c.db, logger)))
	}
	c.session = session.New(store, opts...)

	if c.db != nil {
		if err := index.Sync(c.db, c.session.State().Documents, logger); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}

	c.service = editor.New(c.session, idx, tpls)
	ok = true
	return c, nil
}

func (c *core) openBackend(cfg StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case BackendMemory:
		return storage.NewMemory(), nil
	case BackendSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.closers = append(c.closers, db.Close)
		return db, nil
	default:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.fs = fs
		return fs, nil
	}
}

// loadTemplates merges templates from cfg.Dir over the built-in set.
func loadTemplates(cfg TemplatesConfig) (templates.Provider, error) {
	builtin := templates.Builtin()
	if cfg.Dir == "" {
		return builtin, nil
	}
	extra, err := templates.LoadDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return templates.Merge(builtin, extra), nil
}
