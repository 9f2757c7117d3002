// Package docreader loads parsed fund documents and exposes the Reader and
// AnswerManager surfaces the audit engine consumes. Parsing and OCR happen
// upstream; the input here is the parser's JSON product.
package docreader

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundaudit/internal/model"
)

// chapterJSON mirrors the parser's chapter node.
type chapterJSON struct {
	ElementIndex int           `json:"element_index"`
	Title        string        `json:"title"`
	Start        int           `json:"start"`
	End          int           `json:"end"`
	Children     []chapterJSON `json:"children,omitempty"`
}

// documentJSON mirrors the parser's document payload.
type documentJSON struct {
	ID         string                 `json:"id"`
	Mold       model.Mold             `json:"mold"`
	Paragraphs []model.Paragraph      `json:"paragraphs"`
	Chapters   []chapterJSON          `json:"chapters"`
	Answers    map[string]answerJSON  `json:"answers"`
}

type answerJSON struct {
	Value    string         `json:"value"`
	Outlines model.Outlines `json:"outlines,omitempty"`
}

// Document is a fully loaded parsed document.
type Document struct {
	ID         string
	Mold       model.Mold
	paragraphs []model.Paragraph
	syllabuses []*model.Chapter
	byIndex    map[int]*model.Chapter
	answers    *Manager
}

// Load reads a parsed-document JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docreader: read %s", path)
	}
	return Parse(data)
}

// Parse builds a Document from parser JSON.
func Parse(data []byte) (*Document, error) {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "docreader: decode document")
	}
	if raw.ID == "" {
		return nil, eris.New("docreader: document id is empty")
	}

	d := &Document{
		ID:         raw.ID,
		Mold:       raw.Mold,
		paragraphs: raw.Paragraphs,
		byIndex:    make(map[int]*model.Chapter),
	}
	for i := range raw.Chapters {
		d.syllabuses = append(d.syllabuses, d.buildChapter(&raw.Chapters[i], nil))
	}

	answers := make(map[string]model.Answer, len(raw.Answers))
	for field, a := range raw.Answers {
		answers[field] = model.Answer{Field: field, Value: a.Value, Outlines: a.Outlines}
	}
	d.answers = &Manager{answers: answers}

	return d, nil
}

func (d *Document) buildChapter(raw *chapterJSON, parent *model.Chapter) *model.Chapter {
	ch := &model.Chapter{
		ElementIndex: raw.ElementIndex,
		Title:        raw.Title,
		Start:        raw.Start,
		End:          raw.End,
		Parent:       parent,
	}
	for i := range raw.Children {
		ch.Children = append(ch.Children, d.buildChapter(&raw.Children[i], ch))
	}
	d.byIndex[ch.ElementIndex] = ch
	return ch
}

// Answers returns the document's answer manager.
func (d *Document) Answers() *Manager { return d.answers }
