package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/persistence/file"
	"github.com/medgate/medgate/pkg/persistence/postgresql"
)

// NewPersistence selects the run store backend from the URL scheme. Postgres
// URLs get the SQL store; anything else is treated as a filesystem root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch provider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func provider(url string) string {
	parts := strings.SplitN(url, "://", 2)

	return parts[0]
}
