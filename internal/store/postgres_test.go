package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundaudit/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresGetAuditNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, document, mold, status, error, summary, created_at, updated_at FROM audits WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAudit(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateAudit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO audits`).
		WithArgs(pgxmock.AnyArg(), "contract.json", "fund_contract", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a, err := s.CreateAudit(context.Background(), "contract.json", model.MoldContract)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.AuditStatusQueued, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateAuditStatusNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE audits SET status`).
		WithArgs("failed", "boom", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateAuditStatus(context.Background(), "missing", model.AuditStatusFailed, "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM audit_results WHERE audit_id = \$1`).
		WithArgs("audit-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO audit_results`).
		WithArgs(pgxmock.AnyArg(), "audit-1", 0, "template_001", "双十比例限制", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE audits SET status`).
		WithArgs("completed", pgxmock.AnyArg(), pgxmock.AnyArg(), "audit-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err := s.SaveResults(context.Background(), "audit-1", []model.ResultItem{
		{Label: "template_001", Name: "双十比例限制", IsCompliance: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"item"}).
		AddRow([]byte(`{"label":"template_001","name":"双十比例限制","is_compliance":true}`))
	mock.ExpectQuery(`SELECT item FROM audit_results WHERE audit_id = \$1 ORDER BY position`).
		WithArgs("audit-1").
		WillReturnRows(rows)

	got, err := s.GetResults(context.Background(), "audit-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "template_001", got[0].Label)
	assert.True(t, got[0].IsCompliance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
