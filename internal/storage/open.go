package storage

import (
	"context"
	"fmt"
	"io"
)

type Options struct {
	Driver         string // sqlite or file
	DBPath         string
	MigrationsPath string
	Dir            string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured store. The closer releases the database handle.
func Open(ctx context.Context, opts Options) (KV, io.Closer, error) {
	switch opts.Driver {
	case "file":
		fs := NewFileStore(opts.Dir)
		if err := fs.EnsureDir(); err != nil {
			return nil, nil, err
		}
		return fs, nopCloser{}, nil
	case "sqlite", "":
		db, err := OpenSQLite(opts.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		store := NewSQLite(db)
		if err := store.Init(ctx, opts.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init db: %w", err)
		}
		return store, db, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
