package model

// ReasonKind is the verdict variant a rule evaluation step emits.
type ReasonKind string

const (
	ReasonMatch           ReasonKind = "MATCH"
	ReasonConflict        ReasonKind = "CONFLICT"
	ReasonNoMatch         ReasonKind = "NO_MATCH"
	ReasonMissContent     ReasonKind = "MISS_CONTENT"
	ReasonIgnoreCondition ReasonKind = "IGNORE_CONDITION"
	ReasonSchemaFailed    ReasonKind = "SCHEMA_FAILED"
	ReasonMatchFailed     ReasonKind = "MATCH_FAILED"
)

// DiffOp is one diff frame operation.
type DiffOp int8

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// DiffFrame is one compact diff frame: Text under Op relative to the
// reference template (Insert = present only in the document, Delete =
// present only in the template).
type DiffFrame struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// Reason is one typed justification inside a rule Result.
type Reason struct {
	Kind     ReasonKind  `json:"kind"`
	Text     string      `json:"reason_text"`
	Page     int         `json:"page"` // min page across outlines, 0 unknown
	Outlines Outlines    `json:"outlines,omitempty"`
	XPath    string      `json:"xpath,omitempty"`
	Template string      `json:"template,omitempty"` // reference text
	Content  string      `json:"content,omitempty"`  // document text
	Diff     []DiffFrame `json:"diff,omitempty"`
	Source   string      `json:"source,omitempty"` // citation line
	Matched  bool        `json:"matched"`
	Ignored  bool        `json:"ignored"`
}

// Blocking reports whether the reason counts against compliance. Ignored
// and matched reasons never block.
func (r Reason) Blocking() bool {
	return !r.Ignored && !r.Matched
}

// SchemaResult is the serializable view of one schema field check.
type SchemaResult struct {
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Outlines Outlines `json:"outlines,omitempty"`
	Matched  bool     `json:"matched"`
}

// ResultItem is the finalized product of evaluating one rule against one
// document.
type ResultItem struct {
	Name            string         `json:"name"`
	RelatedName     string         `json:"related_name"`
	Label           string         `json:"label"`
	RuleType        RuleType       `json:"rule_type"`
	IsCompliance    bool           `json:"is_compliance"`
	Reasons         []Reason       `json:"reasons"`
	Suggestion      string         `json:"suggestion,omitempty"`
	SchemaID        string         `json:"schema_id,omitempty"`
	FID             string         `json:"fid,omitempty"`
	SchemaResults   []SchemaResult `json:"schema_results,omitempty"`
	OriginContents  []string       `json:"origin_contents,omitempty"`
	ContractContent string         `json:"contract_content,omitempty"`
}

// Finalize computes compliance from the reason stream: compliant iff no
// blocking reason remains.
func (r *ResultItem) Finalize() {
	r.IsCompliance = true
	for _, reason := range r.Reasons {
		if reason.Blocking() {
			r.IsCompliance = false
			return
		}
	}
}
