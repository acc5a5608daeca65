package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/adapters/file"
	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/pkg/adapters/assets"
	"github.com/aretw0/pagecraft/pkg/adapters/catalog"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/adapters/mongo"
	"github.com/aretw0/pagecraft/pkg/adapters/redis"
	"github.com/aretw0/pagecraft/pkg/adapters/sqlstore"
	"github.com/aretw0/pagecraft/pkg/autosave"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
)

// Backend is the set of stores selected by a configuration.
type Backend struct {
	Projects ports.ProjectStore
	Versions ports.VersionStore
	Locker   ports.DistributedLocker
	Catalog  *catalog.File
	Assets   ports.AssetStore

	closers []func() error
}

// Close releases every connection opened by OpenBackend.
func (b *Backend) Close() error {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, b.closers[i]())
	}
	return errs
}

// OpenBackend connects the store named by cfg.Store.Driver and wraps it with
// the redaction and encryption middleware the config asks for.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	if err := b.openStore(ctx, cfg.Store, logger); err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Redact.Patterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Redact.Patterns))
	}
	if cfg.Encryption.Key != "" {
		enc, err := encryptionConfig(cfg.Encryption)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	b.Projects = middleware.Chain(b.Projects, mws...)

	if cfg.Catalog.Path != "" {
		c, err := catalog.Open(cfg.Catalog.Path, catalog.WithLogger(logger))
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		b.Catalog = c
	}
	if cfg.Assets.Dir != "" {
		b.Assets = assets.New(cfg.Assets.Dir)
	}

	logger.Debug("backend ready", "driver", cfg.Store.Driver)
	return b, nil
}

func (b *Backend) openStore(ctx context.Context, sc config.StoreConfig, logger *slog.Logger) error {
	switch sc.Driver {
	case config.DriverMemory:
		b.Projects = memory.NewStore()
		b.Versions = memory.NewVersionStore()

	case config.DriverFile:
		fs := file.New(sc.Dir)
		b.Projects, b.Versions = fs, fs

	case config.DriverRedis:
		var opts []redis.Option
		if sc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(sc.Prefix))
		}
		if ttl := sc.TTLDuration(); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		rs, err := redis.NewFromURL(sc.DSN, opts...)
		if err != nil {
			return fmt.Errorf("connecting redis: %w", err)
		}
		b.Projects, b.Versions = rs, rs
		prefix := sc.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		b.Locker = redis.NewLocker(rs.Client(), prefix)
		b.closers = append(b.closers, rs.Close)

	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		dsn := sc.DSN
		if sc.Driver == config.DriverSQLite {
			var err error
			if dsn, err = sc.SQLiteDSN(); err != nil {
				return err
			}
			if sc.DSN == "" {
				if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
					return fmt.Errorf("creating data dir: %w", err)
				}
			}
		}
		ss, err := sqlstore.Open(sc.Driver, dsn, sqlstore.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("opening %s store: %w", sc.Driver, err)
		}
		b.Projects, b.Versions = ss, ss
		b.closers = append(b.closers, ss.Close)

	case config.DriverMongo:
		ms, err := mongo.Connect(ctx, sc.DSN, sc.Database)
		if err != nil {
			return fmt.Errorf("connecting mongo: %w", err)
		}
		b.Projects, b.Versions = ms, ms
		b.closers = append(b.closers, func() error { return ms.Close(context.Background()) })

	default:
		return fmt.Errorf("unsupported store driver %q", sc.Driver)
	}
	return nil
}

func encryptionConfig(ec config.EncryptionConfig) (middleware.EncryptionConfig, error) {
	active, err := middleware.DecodeKey(ec.Key)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("encryption.key: %w", err)
	}
	out := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range ec.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("encryption.fallback_keys[%d]: %w", i, err)
		}
		out.FallbackKeys = append(out.FallbackKeys, key)
	}
	return out, nil
}

// EditorOptions maps the autosave, history and grid sections onto session options.
func EditorOptions(cfg *config.Config) []editor.Option {
	saveOpts := []autosave.Option{autosave.WithEnabled(cfg.Autosave.Enabled)}
	if d := cfg.Autosave.DebounceDuration(); d > 0 {
		saveOpts = append(saveOpts, autosave.WithDebounce(d))
	}
	if d := cfg.Autosave.IntervalDuration(); d > 0 {
		saveOpts = append(saveOpts, autosave.WithInterval(d))
	}

	histOpts := []history.Option{history.WithDepth(cfg.History.Depth)}
	if w := cfg.History.WindowDuration(); w > 0 {
		histOpts = append(histOpts, history.WithWindow(w))
	}

	return []editor.Option{
		editor.WithAutosave(saveOpts...),
		editor.WithHistory(histOpts...),
		editor.WithGrid(editor.GridSettings{
			Enabled:       cfg.Grid.Enabled,
			Size:          cfg.Grid.Size,
			SnapToGrid:    cfg.Grid.SnapToGrid,
			SnapToObjects: cfg.Grid.SnapToObjects,
			SnapThreshold: cfg.Grid.SnapThreshold,
		}),
	}
}

// NewWorkspace builds a workspace over b with the session settings of cfg.
func NewWorkspace(b *Backend, cfg *config.Config, logger *slog.Logger, hooks domain.Hooks) *pagecraft.Workspace {
	opts := []pagecraft.Option{
		pagecraft.WithProjectStore(b.Projects),
		pagecraft.WithVersionStore(b.Versions),
		pagecraft.WithLogger(logger),
		pagecraft.WithHooks(hooks),
		pagecraft.WithEditorOptions(EditorOptions(cfg)...),
	}
	if b.Locker != nil {
		opts = append(opts, pagecraft.WithLocker(b.Locker, cfg.Server.LockTTLDuration()))
	}
	if b.Catalog != nil {
		opts = append(opts, pagecraft.WithCatalog(b.Catalog))
	}
	if b.Assets != nil {
		opts = append(opts, pagecraft.WithAssets(b.Assets))
	}
	return pagecraft.New(opts...)
}
