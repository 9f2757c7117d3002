package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fundaudit/internal/model"
)

// Pool is the pgxpool surface the store uses; pgxmock satisfies it for
// unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document   TEXT NOT NULL,
	mold       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT NOT NULL DEFAULT '',
	summary    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_results (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	audit_id      TEXT NOT NULL REFERENCES audits(id),
	position      INTEGER NOT NULL,
	label         TEXT NOT NULL,
	name          TEXT NOT NULL,
	is_compliance BOOLEAN NOT NULL,
	item          JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audits_status ON audits(status);
CREATE INDEX IF NOT EXISTS idx_audits_mold ON audits(mold);
CREATE INDEX IF NOT EXISTS idx_audit_results_audit_id ON audit_results(audit_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) CreateAudit(ctx context.Context, document string, mold model.Mold) (*model.Audit, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audits (id, document, mold, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, document, string(mold), string(model.AuditStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert audit")
	}

	return &model.Audit{
		ID:        id,
		Document:  document,
		Mold:      mold,
		Status:    model.AuditStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus, errText string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audits SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(status), errText, time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update audit status %s", auditID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("audit not found: %s", auditID)
	}
	return nil
}

func (s *PostgresStore) GetAudit(ctx context.Context, auditID string) (*model.Audit, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, document, mold, status, error, summary, created_at, updated_at FROM audits WHERE id = $1`,
		auditID,
	)
	a, err := scanPgAudit(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get audit %s", auditID)
	}
	return a, nil
}

func (s *PostgresStore) ListAudits(ctx context.Context, filter AuditFilter) ([]model.Audit, error) {
	query := `SELECT id, document, mold, status, error, summary, created_at, updated_at FROM audits WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Mold != "" {
		args = append(args, string(filter.Mold))
		query += fmt.Sprintf(` AND mold = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		a, err := scanPgAudit(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit")
		}
		audits = append(audits, *a)
	}
	return audits, eris.Wrap(rows.Err(), "postgres: list audits iterate")
}

func (s *PostgresStore) SaveResults(ctx context.Context, auditID string, results []model.ResultItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM audit_results WHERE audit_id = $1`, auditID); err != nil {
		return eris.Wrapf(err, "postgres: clear results %s", auditID)
	}

	for i, item := range results {
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal result %s", item.Label)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO audit_results (id, audit_id, position, label, name, is_compliance, item) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), auditID, i, item.Label, item.Name, item.IsCompliance, string(itemJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert result %s", item.Label)
		}
	}

	summaryJSON, err := json.Marshal(model.Summarize(results))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}
	tag, err := tx.Exec(ctx,
		`UPDATE audits SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
		string(model.AuditStatusCompleted), string(summaryJSON), time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete audit %s", auditID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("audit not found: %s", auditID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit results")
}

func (s *PostgresStore) GetResults(ctx context.Context, auditID string) ([]model.ResultItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT item FROM audit_results WHERE audit_id = $1 ORDER BY position`,
		auditID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get results %s", auditID)
	}
	defer rows.Close()

	var results []model.ResultItem
	for rows.Next() {
		var itemJSON []byte
		if err := rows.Scan(&itemJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		var item model.ResultItem
		if err := json.Unmarshal(itemJSON, &item); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		results = append(results, item)
	}
	return results, eris.Wrap(rows.Err(), "postgres: get results iterate")
}

func scanPgAudit(row pgx.Row) (*model.Audit, error) {
	var a model.Audit
	var summaryJSON []byte

	err := row.Scan(&a.ID, &a.Document, &a.Mold, &a.Status, &a.Error, &summaryJSON, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("audit not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan audit")
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &a.Summary); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
	}
	return &a, nil
}
