// Package postgresql provides a PostgreSQL-backed checkpoint store, the
// recommended backend wherever review latency can exceed process lifetime.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence/sqlbase"
)

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS checkpoints (
				run_id     TEXT PRIMARY KEY,
				gate       TEXT NOT NULL,
				token      TEXT NOT NULL,
				state      JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
		`,
	}
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, "checkpoint_schema_migrations", migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: database, logger: logger}, nil
}

func (s *Store) Put(ctx context.Context, cp *models.Checkpoint) error {
	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state for run %s: %w", cp.RunID, err)
	}

	query := `
		INSERT INTO checkpoints (run_id, gate, token, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			gate       = EXCLUDED.gate,
			token      = EXCLUDED.token,
			state      = EXCLUDED.state,
			created_at = EXCLUDED.created_at
	`

	_, err = s.db.ExecContext(ctx, query, cp.RunID, string(cp.Gate), cp.Token, stateJSON, cp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write checkpoint for run %s: %w", cp.RunID, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, runID string) (*models.Checkpoint, error) {
	query := `SELECT run_id, gate, token, state, created_at FROM checkpoints WHERE run_id = $1`

	var (
		cp        models.Checkpoint
		gate      string
		stateJSON []byte
	)

	err := s.db.QueryRowContext(ctx, query, runID).Scan(&cp.RunID, &gate, &cp.Token, &stateJSON, &cp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.ErrCheckpointNotFound
		}

		return nil, fmt.Errorf("failed to read checkpoint for run %s: %w", runID, err)
	}

	cp.Gate = models.Gate(gate)

	err = json.Unmarshal(stateJSON, &cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint state for run %s: %w", runID, err)
	}

	return &cp, nil
}

func (s *Store) Delete(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE run_id = $1", runID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint for run %s: %w", runID, err)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
