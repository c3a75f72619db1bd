package main

import (
	"context"
	"fmt"

	"github.com/FranksOps/newslens/internal/storage"
	"github.com/FranksOps/newslens/internal/storage/jsonbackend"
	"github.com/FranksOps/newslens/internal/storage/postgres"
	"github.com/FranksOps/newslens/internal/storage/sqlite"
)

var defaultDSN = map[string]string{
	"json":   "newslens_history.ndjson",
	"sqlite": "newslens.db",
}

// openBackend opens the history store named by backend. An empty dsn falls
// back to a file in the working directory for the file-based stores.
func openBackend(ctx context.Context, backend, dsn string) (storage.Backend, error) {
	if dsn == "" {
		dsn = defaultDSN[backend]
	}
	switch backend {
	case "json":
		return jsonbackend.New(dsn)
	case "sqlite":
		return sqlite.New(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("store.dsn is required for postgres")
		}
		return postgres.New(ctx, dsn)
	}
	return nil, fmt.Errorf("no history store configured (got %q): use --store json, sqlite or postgres", backend)
}
