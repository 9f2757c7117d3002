// Package model holds the data types shared across the audit engine:
// parsed-document elements, classification tags, rule and template ASTs,
// condition relations and the typed reasons a rule evaluation emits.
package model

// Mold identifies the rule family for a document kind.
type Mold string

const (
	MoldContract  Mold = "fund_contract"    // 基金合同
	MoldCustody   Mold = "custody"          // 托管协议
	MoldAssetPlan Mold = "asset_plan"       // 资产管理计划合同
)

// ElementKind classifies a document element.
type ElementKind string

const (
	KindParagraph ElementKind = "PARAGRAPH"
	KindTable     ElementKind = "TABLE"
	KindImage     ElementKind = "IMAGE"
)

// BBox is an axis-aligned box on a page: x0, y0, x1, y1.
type BBox [4]float64

// Outlines maps a page number to the boxes highlighted on it.
type Outlines map[int][]BBox

// Merge folds other into o, page by page.
func (o Outlines) Merge(other Outlines) {
	for page, boxes := range other {
		o[page] = append(o[page], boxes...)
	}
}

// MinPage returns the smallest page holding any box, or 0 when empty.
func (o Outlines) MinPage() int {
	min := 0
	for page := range o {
		if min == 0 || page < min {
			min = page
		}
	}
	return min
}

// Paragraph is one parsed document element. Index is monotone in document
// order; a Paragraph is immutable after parse.
type Paragraph struct {
	Index       int         `json:"index"`
	Page        int         `json:"page"`
	Text        string      `json:"text"`
	Kind        ElementKind `json:"kind"`
	Fragment    bool        `json:"fragment,omitempty"`
	Outline     []BBox      `json:"outline,omitempty"`
	OutlinePath string      `json:"outline_path,omitempty"`
}

// Outlines returns the paragraph's boxes keyed by its page.
func (p Paragraph) Outlines() Outlines {
	if len(p.Outline) == 0 {
		return Outlines{}
	}
	return Outlines{p.Page: append([]BBox(nil), p.Outline...)}
}

// Chapter is a syllabus node. A chapter contains the paragraphs whose index
// lies in [Start, End].
type Chapter struct {
	ElementIndex int        `json:"element_index"`
	Title        string     `json:"title"`
	Start        int        `json:"start"`
	End          int        `json:"end"`
	Parent       *Chapter   `json:"-"`
	Children     []*Chapter `json:"children,omitempty"`
}

// Contains reports whether the element at idx lies inside the chapter.
func (c *Chapter) Contains(idx int) bool {
	return idx >= c.Start && idx <= c.End
}

// Answer is an externally extracted field value with its display outlines.
// The engine consumes answers read-only.
type Answer struct {
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Outlines Outlines `json:"outlines,omitempty"`
}

// Empty reports whether no value was extracted.
func (a Answer) Empty() bool { return a.Value == "" }
