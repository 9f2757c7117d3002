package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundaudit/internal/model"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteCreateAndGetAudit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateAudit(ctx, "contract.json", model.MoldContract)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.AuditStatusQueued, a.Status)

	got, err := s.GetAudit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "contract.json", got.Document)
	assert.Equal(t, model.MoldContract, got.Mold)
}

func TestSQLiteGetAuditNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetAudit(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteUpdateAuditStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateAudit(ctx, "contract.json", model.MoldContract)
	require.NoError(t, err)

	require.NoError(t, s.UpdateAuditStatus(ctx, a.ID, model.AuditStatusFailed, "parse error"))

	got, err := s.GetAudit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuditStatusFailed, got.Status)
	assert.Equal(t, "parse error", got.Error)

	err = s.UpdateAuditStatus(ctx, "missing", model.AuditStatusRunning, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteSaveAndGetResults(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateAudit(ctx, "contract.json", model.MoldContract)
	require.NoError(t, err)

	results := []model.ResultItem{
		{
			Label:        "template_001",
			Name:         "双十比例限制",
			IsCompliance: true,
			Reasons:      []model.Reason{{Kind: model.ReasonMatch, Text: "ok", Matched: true}},
		},
		{
			Label:        "template_002",
			Name:         "募集规模下限",
			IsCompliance: false,
			Reasons:      []model.Reason{{Kind: model.ReasonNoMatch, Text: "未找到相关表述", Page: 3}},
		},
	}
	require.NoError(t, s.SaveResults(ctx, a.ID, results))

	got, err := s.GetResults(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "template_001", got[0].Label)
	assert.Equal(t, "template_002", got[1].Label)
	assert.False(t, got[1].IsCompliance)
	require.Len(t, got[1].Reasons, 1)
	assert.Equal(t, 3, got[1].Reasons[0].Page)

	// Saving marks the audit completed with a derived summary.
	audit, err := s.GetAudit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuditStatusCompleted, audit.Status)
	assert.Equal(t, model.AuditSummary{Rules: 2, Compliant: 1, Violations: 1}, audit.Summary)
}

func TestSQLiteSaveResultsReplacesPrevious(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateAudit(ctx, "contract.json", model.MoldContract)
	require.NoError(t, err)

	require.NoError(t, s.SaveResults(ctx, a.ID, []model.ResultItem{
		{Label: "template_001", Name: "双十比例限制", IsCompliance: false},
	}))
	require.NoError(t, s.SaveResults(ctx, a.ID, []model.ResultItem{
		{Label: "template_001", Name: "双十比例限制", IsCompliance: true},
	}))

	got, err := s.GetResults(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsCompliance)
}

func TestSQLiteListAudits(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a1, err := s.CreateAudit(ctx, "one.json", model.MoldContract)
	require.NoError(t, err)
	_, err = s.CreateAudit(ctx, "two.json", model.MoldCustody)
	require.NoError(t, err)
	require.NoError(t, s.UpdateAuditStatus(ctx, a1.ID, model.AuditStatusCompleted, ""))

	all, err := s.ListAudits(ctx, AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := s.ListAudits(ctx, AuditFilter{Status: model.AuditStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a1.ID, completed[0].ID)

	custody, err := s.ListAudits(ctx, AuditFilter{Mold: model.MoldCustody})
	require.NoError(t, err)
	require.Len(t, custody, 1)
	assert.Equal(t, "two.json", custody[0].Document)

	limited, err := s.ListAudits(ctx, AuditFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
