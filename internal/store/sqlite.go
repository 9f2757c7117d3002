package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fundaudit/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	mold       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT NOT NULL DEFAULT '',
	summary    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS audit_results (
	id            TEXT PRIMARY KEY,
	audit_id      TEXT NOT NULL REFERENCES audits(id),
	position      INTEGER NOT NULL,
	label         TEXT NOT NULL,
	name          TEXT NOT NULL,
	is_compliance INTEGER NOT NULL,
	item          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audits_status ON audits(status);
CREATE INDEX IF NOT EXISTS idx_audits_mold ON audits(mold);
CREATE INDEX IF NOT EXISTS idx_audit_results_audit_id ON audit_results(audit_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAudit(ctx context.Context, document string, mold model.Mold) (*model.Audit, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audits (id, document, mold, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, document, string(mold), string(model.AuditStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert audit")
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

func (s *SQLiteStore) UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus, errText string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audits SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errText, time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update audit status %s", auditID)
	}
	return checkRowsAffected(res, "audit", auditID)
}

func (s *SQLiteStore) GetAudit(ctx context.Context, auditID string) (*model.Audit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document, mold, status, error, summary, created_at, updated_at FROM audits WHERE id = ?`,
		auditID,
	)
	return scanAudit(row)
}

func (s *SQLiteStore) ListAudits(ctx context.Context, filter AuditFilter) ([]model.Audit, error) {
	query := `SELECT id, document, mold, status, error, summary, created_at, updated_at FROM audits WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Mold != "" {
		query += ` AND mold = ?`
		args = append(args, string(filter.Mold))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, *a)
	}
	return audits, eris.Wrap(rows.Err(), "sqlite: list audits iterate")
}

// SaveResults stores the finalized rule results and marks the audit
// completed with its derived summary.
func (s *SQLiteStore) SaveResults(ctx context.Context, auditID string, results []model.ResultItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_results WHERE audit_id = ?`, auditID); err != nil {
		return eris.Wrapf(err, "sqlite: clear results %s", auditID)
	}

	for i, item := range results {
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal result %s", item.Label)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO audit_results (id, audit_id, position, label, name, is_compliance, item) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), auditID, i, item.Label, item.Name, item.IsCompliance, string(itemJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert result %s", item.Label)
		}
	}

	summaryJSON, err := json.Marshal(model.Summarize(results))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE audits SET status = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(model.AuditStatusCompleted), string(summaryJSON), time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete audit %s", auditID)
	}
	if err := checkRowsAffected(res, "audit", auditID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit results")
}

func (s *SQLiteStore) GetResults(ctx context.Context, auditID string) ([]model.ResultItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item FROM audit_results WHERE audit_id = ? ORDER BY position`,
		auditID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get results %s", auditID)
	}
	defer rows.Close()

	var results []model.ResultItem
	for rows.Next() {
		var itemJSON string
		if err := rows.Scan(&itemJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		var item model.ResultItem
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		results = append(results, item)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: get results iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAudit(row scannable) (*model.Audit, error) {
	var a model.Audit
	var summaryJSON sql.NullString

	err := row.Scan(&a.ID, &a.Document, &a.Mold, &a.Status, &a.Error, &summaryJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("audit not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan audit")
	}

	if summaryJSON.Valid && summaryJSON.String != "" {
		if err := json.Unmarshal([]byte(summaryJSON.String), &a.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	return &a, nil
}
