package model

import "time"

// AuditStatus is the lifecycle state of one stored audit.
type AuditStatus string

const (
	AuditStatusQueued    AuditStatus = "queued"
	AuditStatusRunning   AuditStatus = "running"
	AuditStatusCompleted AuditStatus = "completed"
	AuditStatusFailed    AuditStatus = "failed"
)

// AuditSummary aggregates the outcome of one audit run.
type AuditSummary struct {
	Rules      int `json:"rules"`
	Compliant  int `json:"compliant"`
	Violations int `json:"violations"`
}

// Audit is one persisted audit of one document.
type Audit struct {
	ID        string       `json:"id"`
	Document  string       `json:"document"` // source file name or identifier
	Mold      Mold         `json:"mold"`
	Status    AuditStatus  `json:"status"`
	Error     string       `json:"error,omitempty"`
	Summary   AuditSummary `json:"summary"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Summarize derives the audit summary from finalized results.
func Summarize(results []ResultItem) AuditSummary {
	s := AuditSummary{Rules: len(results)}
	for _, r := range results {
		if r.IsCompliance {
			s.Compliant++
		} else {
			s.Violations++
		}
	}
	return s
}
