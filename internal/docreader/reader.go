package docreader

import (
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// Reader is the read-only document surface the engine evaluates against.
type Reader interface {
	Paragraphs() []model.Paragraph
	Syllabuses() []*model.Chapter
	FindByIndex(i int) *model.Chapter
	GetChildSyllabus(ch *model.Chapter) []*model.Chapter
	FindParagraphsByChapters(patterns []*pattern.Collection, withParent, continued bool) ([]*model.Chapter, []model.Paragraph)
	FindSyllsByPattern(p *pattern.Collection) []*model.Chapter
	FindChapterByPatterns(patterns []*pattern.Collection) []*model.Chapter
	FindElementByIndex(i int) (model.ElementKind, *model.Paragraph)
}

// Paragraphs returns every parsed element in document order.
func (d *Document) Paragraphs() []model.Paragraph { return d.paragraphs }

// Syllabuses returns the top-level chapter nodes.
func (d *Document) Syllabuses() []*model.Chapter { return d.syllabuses }

// FindByIndex returns the chapter anchored at element index i, or nil.
func (d *Document) FindByIndex(i int) *model.Chapter { return d.byIndex[i] }

// GetChildSyllabus returns the direct children of ch.
func (d *Document) GetChildSyllabus(ch *model.Chapter) []*model.Chapter {
	if ch == nil {
		return nil
	}
	return ch.Children
}

// FindElementByIndex returns the element at index i and its kind.
func (d *Document) FindElementByIndex(i int) (model.ElementKind, *model.Paragraph) {
	for idx := range d.paragraphs {
		if d.paragraphs[idx].Index == i {
			return d.paragraphs[idx].Kind, &d.paragraphs[idx]
		}
	}
	return "", nil
}

// FindSyllsByPattern returns every chapter, at any depth, whose normalized
// title matches p.
func (d *Document) FindSyllsByPattern(p *pattern.Collection) []*model.Chapter {
	var out []*model.Chapter
	var walk func(chs []*model.Chapter)
	walk = func(chs []*model.Chapter) {
		for _, ch := range chs {
			if titleMatches(p, ch.Title) {
				out = append(out, ch)
			}
			walk(ch.Children)
		}
	}
	walk(d.syllabuses)
	return out
}

// FindChapterByPatterns resolves a chapter path, parent to child, and
// returns the deepest chapters reached. An empty result means the path does
// not exist in the document.
func (d *Document) FindChapterByPatterns(patterns []*pattern.Collection) []*model.Chapter {
	if len(patterns) == 0 {
		return nil
	}
	level := d.syllabuses
	var matched []*model.Chapter
	for depth, p := range patterns {
		matched = matched[:0]
		for _, ch := range level {
			if titleMatches(p, ch.Title) {
				matched = append(matched, ch)
			}
		}
		if len(matched) == 0 {
			// Chapter levels are sometimes flattened by the parser; retry the
			// remaining path against all descendants of the current level.
			for _, ch := range level {
				for _, sub := range descendants(ch) {
					if titleMatches(p, sub.Title) {
						matched = append(matched, sub)
					}
				}
			}
		}
		if len(matched) == 0 {
			return nil
		}
		if depth == len(patterns)-1 {
			break
		}
		level = level[:0]
		for _, ch := range matched {
			level = append(level, ch.Children...)
		}
	}
	return append([]*model.Chapter(nil), matched...)
}

// FindParagraphsByChapters resolves a chapter path and returns the matched
// chapters with their scoped paragraphs. When continued is true the scope
// extends over sibling continuation blocks whose title matches the last
// pattern; when withParent is true the parents of matched chapters are
// included in the chapter list.
func (d *Document) FindParagraphsByChapters(patterns []*pattern.Collection, withParent, continued bool) ([]*model.Chapter, []model.Paragraph) {
	matched := d.FindChapterByPatterns(patterns)
	if len(matched) == 0 {
		return nil, nil
	}

	scope := append([]*model.Chapter(nil), matched...)
	if continued {
		last := patterns[len(patterns)-1]
		inScope := make(map[*model.Chapter]bool, len(scope))
		for _, ch := range scope {
			inScope[ch] = true
		}
		for _, ch := range matched {
			for _, sib := range d.siblingsAfter(ch) {
				if !titleMatches(last, sib.Title) {
					break
				}
				if !inScope[sib] {
					inScope[sib] = true
					scope = append(scope, sib)
				}
			}
		}
	}

	var paras []model.Paragraph
	seen := make(map[int]bool)
	for _, ch := range scope {
		for _, p := range d.paragraphs {
			if p.Index == ch.ElementIndex {
				continue // the chapter title element itself
			}
			if ch.Contains(p.Index) && !seen[p.Index] {
				seen[p.Index] = true
				paras = append(paras, p)
			}
		}
	}

	chapters := scope
	if withParent {
		for _, ch := range matched {
			for parent := ch.Parent; parent != nil; parent = parent.Parent {
				chapters = append(chapters, parent)
			}
		}
	}
	return chapters, paras
}

func (d *Document) siblingsAfter(ch *model.Chapter) []*model.Chapter {
	siblings := d.syllabuses
	if ch.Parent != nil {
		siblings = ch.Parent.Children
	}
	for i, s := range siblings {
		if s == ch {
			return siblings[i+1:]
		}
	}
	return nil
}

func descendants(ch *model.Chapter) []*model.Chapter {
	var out []*model.Chapter
	for _, c := range ch.Children {
		out = append(out, c)
		out = append(out, descendants(c)...)
	}
	return out
}

func titleMatches(p *pattern.Collection, title string) bool {
	return p.Matches(textnorm.CleanText(title)) != nil
}
