// Package postgresql provides PostgreSQL run-summary persistence.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/persistence/sqlbase"
)

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS runs (
				id              TEXT PRIMARY KEY,
				url             TEXT NOT NULL,
				requested_by    TEXT,
				status          TEXT NOT NULL,
				routing         JSONB,
				results         JSONB NOT NULL DEFAULT '[]',
				errors          JSONB NOT NULL DEFAULT '[]',
				aggregate_score REAL,
				aggregate_pass  BOOLEAN,
				synthesis       JSONB,
				decision        TEXT,
				feedback        TEXT,
				reviewed_by     TEXT,
				created_at      TIMESTAMPTZ NOT NULL,
				updated_at      TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_runs_status ON runs (status);
		`,
	}
}

type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and migrates the runs schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, "run_schema_migrations", migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

func (p *Persistence) SaveRun(ctx context.Context, run *models.Run) error {
	routingJSON, err := marshalNullable(run.Routing)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	synthesisJSON, err := marshalNullable(run.Synthesis)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal results: %w", err))
	}

	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal errors: %w", err))
	}

	var decision *string

	if run.Decision != nil {
		d := string(*run.Decision)
		decision = &d
	}

	query := `
		INSERT INTO runs (
			id, url, requested_by, status, routing, results, errors,
			aggregate_score, aggregate_pass, synthesis, decision, feedback,
			reviewed_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			status          = EXCLUDED.status,
			routing         = EXCLUDED.routing,
			results         = EXCLUDED.results,
			errors          = EXCLUDED.errors,
			aggregate_score = EXCLUDED.aggregate_score,
			aggregate_pass  = EXCLUDED.aggregate_pass,
			synthesis       = EXCLUDED.synthesis,
			decision        = EXCLUDED.decision,
			feedback        = EXCLUDED.feedback,
			reviewed_by     = EXCLUDED.reviewed_by,
			updated_at      = EXCLUDED.updated_at
	`

	_, err = p.db.ExecContext(ctx, query,
		run.ID,
		run.URL,
		run.RequestedBy,
		string(run.Status),
		routingJSON,
		resultsJSON,
		errorsJSON,
		run.AggregateScore,
		run.AggregatePass,
		synthesisJSON,
		decision,
		run.Feedback,
		run.ReviewedBy,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

func (p *Persistence) RunByID(ctx context.Context, id string) (*models.Run, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+" FROM runs WHERE id = $1", id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return run, nil
}

func (p *Persistence) Runs(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.db.QueryContext(ctx, selectColumns+" FROM runs ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*models.Run, 0, limit)

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

const selectColumns = `
	SELECT id, url, requested_by, status, routing, results, errors,
		   aggregate_score, aggregate_pass, synthesis, decision, feedback,
		   reviewed_by, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run           models.Run
		status        string
		routingJSON   []byte
		resultsJSON   []byte
		errorsJSON    []byte
		synthesisJSON []byte
		decision      sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.URL,
		&run.RequestedBy,
		&status,
		&routingJSON,
		&resultsJSON,
		&errorsJSON,
		&run.AggregateScore,
		&run.AggregatePass,
		&synthesisJSON,
		&decision,
		&run.Feedback,
		&run.ReviewedBy,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)

	if len(routingJSON) > 0 {
		run.Routing = &models.RoutingDecision{}
		if err := json.Unmarshal(routingJSON, run.Routing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal routing: %w", err)
		}
	}

	if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
	}

	if len(synthesisJSON) > 0 {
		run.Synthesis = &models.Synthesis{}
		if err := json.Unmarshal(synthesisJSON, run.Synthesis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal synthesis: %w", err)
		}
	}

	if decision.Valid {
		d := models.Decision(decision.String)
		run.Decision = &d
	}

	return &run, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch value := v.(type) {
	case *models.RoutingDecision:
		if value == nil {
			return nil, nil
		}
	case *models.Synthesis:
		if value == nil {
			return nil, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field: %w", err)
	}

	return data, nil
}
