package docreader

import (
	"sync"

	"github.com/sells-group/fundaudit/internal/model"
)

// Manager exposes externally extracted answers read-only, plus the
// classification map once it has been resolved for the document.
type Manager struct {
	answers map[string]model.Answer

	clsOnce sync.Once
	cls     model.Classification
}

// NewManager wraps a plain answer map; used by tests and by callers that
// assemble documents by hand.
func NewManager(answers map[string]model.Answer) *Manager {
	if answers == nil {
		answers = map[string]model.Answer{}
	}
	return &Manager{answers: answers}
}

// Get returns the answer for field. A missing field yields a zero Answer,
// which reads as empty.
func (m *Manager) Get(field string) model.Answer {
	return m.answers[field]
}

// Mapping returns all extracted answers.
func (m *Manager) Mapping() map[string]model.Answer { return m.answers }

// Memoize stores the classification computed for this document. Only the
// first call takes effect; classification is stable per document.
func (m *Manager) Memoize(resolve func() model.Classification) model.Classification {
	m.clsOnce.Do(func() { m.cls = resolve() })
	return m.cls
}

// Classification returns the memoized classification map, or nil when it
// has not been resolved yet.
func (m *Manager) Classification() model.Classification { return m.cls }

// BuildSchemaResults renders the serializable view of the given schema
// fields against the extracted answers.
func (m *Manager) BuildSchemaResults(fields []model.SchemaField) []model.SchemaResult {
	out := make([]model.SchemaResult, 0, len(fields))
	for _, f := range fields {
		a := m.Get(f.Field)
		out = append(out, model.SchemaResult{
			Field:    f.Field,
			Value:    a.Value,
			Outlines: a.Outlines,
			Matched:  !a.Empty() || !f.Required,
		})
	}
	return out
}
