package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/snapnote/pkg/adapters/fs"
	"github.com/aretw0/snapnote/pkg/adapters/memory"
	"github.com/aretw0/snapnote/pkg/adapters/sqlite"
	"github.com/aretw0/snapnote/pkg/core"
	"github.com/aretw0/snapnote/pkg/gateway"
	"github.com/aretw0/snapnote/pkg/images"
)

// Vault bundles everything wired for one vault directory.
type Vault struct {
	Path    string
	Adapter string
	Storage core.Storage
	Gateway *gateway.Gateway
	Images  *images.Store // nil in read-only mode
	Store   *core.Store
	Logger  *slog.Logger
}

// Close flushes the store and releases the storage.
func (v *Vault) Close(ctx context.Context) error {
	err := v.Store.Close(ctx)
	if c, ok := v.Storage.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// Init resolves the vault path and prepares its storage.
// The 'uri' argument is adapter-specific: a directory for "fs", a directory
// or a .db file for "sqlite", ignored for "memory".
func Init(uri string, opts ...Option) (*Vault, error) {
	o := parseOptions(opts)

	isReadOnly := o.bool("read_only")
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass Safety if read-only is active or the user disabled it.
	bypassSafety := isReadOnly || !devSafety
	useTemp := o.bool("temp_dir") || (IsDevRun() && !bypassSafety)

	dbFile := ""
	if strings.HasSuffix(uri, ".db") {
		dbFile = filepath.Base(uri)
		uri = filepath.Dir(uri)
	}
	resolvedPath := ResolveVaultPath(uri, useTemp)

	fileCfg, err := LoadConfig(resolvedPath)
	if err != nil {
		return nil, err
	}
	fileCfg.apply(o)

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if useTemp {
		logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", resolvedPath)
	} else if IsDevRun() && bypassSafety && !isReadOnly {
		logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
	}

	v := &Vault{Path: resolvedPath, Logger: logger}

	switch {
	case o.storage != nil:
		v.Adapter = "custom"
		v.Storage = o.storage
	default:
		v.Adapter = o.adapter
		if v.Adapter == "" {
			v.Adapter = "fs"
		}
		switch v.Adapter {
		case "fs":
			v.Storage = initFS(resolvedPath, o, logger)
		case "sqlite":
			if dbFile == "" {
				dbFile = sqlite.DefaultFile
			}
			v.Storage = sqlite.NewStorage(sqlite.Config{
				Path:     filepath.Join(resolvedPath, dbFile),
				ReadOnly: isReadOnly,
				Logger:   logger,
			})
		case "memory":
			v.Storage = memory.New()
		default:
			return nil, fmt.Errorf("unknown adapter: %s", v.Adapter)
		}
	}

	if err := v.Storage.Initialize(context.Background()); err != nil {
		return nil, err
	}

	v.Gateway = gateway.New(v.Storage)

	// The memory adapter only gets images when a directory is given.
	dir := o.string("image_dir")
	if !isReadOnly && (v.Adapter != "memory" || dir != "") {
		if dir == "" {
			dir = "images"
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(resolvedPath, dir)
		}
		v.Images = images.New(dir, images.WithLogger(logger), images.WithClock(o.clock))
	}

	return v, nil
}

// initFS builds the filesystem storage.
func initFS(path string, o *options, logger *slog.Logger) *fs.Storage {
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	return fs.NewStorage(fs.Config{
		Path:         path,
		SystemDir:    o.string("system_dir"),
		MustExist:    o.bool("must_exist"),
		ReadOnly:     o.bool("read_only"),
		Versioned:    o.bool("versioning"),
		Logger:       logger,
		ErrorHandler: errorHandler,
	})
}
