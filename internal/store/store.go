package store

import (
	"context"

	"github.com/sells-group/fundaudit/internal/model"
)

// AuditFilter specifies criteria for listing audits.
type AuditFilter struct {
	Status model.AuditStatus `json:"status,omitempty"`
	Mold   model.Mold        `json:"mold,omitempty"`
	Limit  int               `json:"limit,omitempty"`
	Offset int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for audit runs and their
// per-rule results.
type Store interface {
	// Audits
	CreateAudit(ctx context.Context, document string, mold model.Mold) (*model.Audit, error)
	UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus, errText string) error
	GetAudit(ctx context.Context, auditID string) (*model.Audit, error)
	ListAudits(ctx context.Context, filter AuditFilter) ([]model.Audit, error)

	// Results
	SaveResults(ctx context.Context, auditID string, results []model.ResultItem) error
	GetResults(ctx context.Context, auditID string) ([]model.ResultItem, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
