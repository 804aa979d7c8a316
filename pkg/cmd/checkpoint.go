package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/checkpoint/file"
	"github.com/medgate/medgate/pkg/checkpoint/memory"
	"github.com/medgate/medgate/pkg/checkpoint/postgresql"
	"github.com/medgate/medgate/pkg/checkpoint/redis"
)

// NewCheckpointStore selects the checkpoint backend from the URL scheme:
// memory://, file://<root>, redis://... or postgres://....
func NewCheckpointStore(ctx context.Context, logger *slog.Logger, storeURL string) (checkpoint.Store, error) {
	switch provider(storeURL) {
	case "memory":
		return memory.NewStore(logger), nil
	case "file":
		return file.NewStore(strings.TrimPrefix(storeURL, "file://")), nil
	case "redis", "rediss":
		return redis.NewStore(ctx, storeURL)
	case "postgres", "postgresql":
		return postgresql.NewStore(ctx, logger, storeURL)
	default:
		return nil, fmt.Errorf("unsupported checkpoint store '%s'", storeURL)
	}
}
