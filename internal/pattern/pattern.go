// Package pattern provides named collections of regular-expression
// alternatives used throughout the audit engine. A Collection behaves as the
// union of its alternatives: matching returns the earliest hit across all of
// them, scanning is non-overlapping, and capture groups of the winning
// alternative are exposed by name and index.
package pattern

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// Collection is a frozen, ordered set of compiled regex alternatives.
type Collection struct {
	name  string
	exprs []*regexp.Regexp
}

// Match is a single hit of a Collection against a string. Offsets are rune
// offsets into the searched string.
type Match struct {
	re    *regexp.Regexp
	src   []rune
	start int
	end   int
	subs  []int // pair offsets per group, rune based, -1 when absent
}

// New compiles the given alternatives into a Collection. An empty set or a
// non-compiling expression is an error.
func New(name string, exprs ...string) (*Collection, error) {
	if len(exprs) == 0 {
		return nil, eris.Errorf("pattern: collection %q has no alternatives", name)
	}
	c := &Collection{name: name}
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, eris.Wrapf(err, "pattern: compile %q in collection %q", e, name)
		}
		c.exprs = append(c.exprs, re)
	}
	return c, nil
}

// MustNew is New for package-level constants; it panics on error.
func MustNew(name string, exprs ...string) *Collection {
	c, err := New(name, exprs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Union returns a new Collection holding the alternatives of both operands,
// in order. The receiver's name is kept.
func (c *Collection) Union(other *Collection) *Collection {
	out := &Collection{name: c.name}
	out.exprs = append(out.exprs, c.exprs...)
	if other != nil {
		out.exprs = append(out.exprs, other.exprs...)
	}
	return out
}

// Exprs returns the source text of every alternative.
func (c *Collection) Exprs() []string {
	out := make([]string, len(c.exprs))
	for i, re := range c.exprs {
		out[i] = re.String()
	}
	return out
}

// Matches returns the earliest match across alternatives, or nil. Ties on
// start offset are broken by the longer match, then by alternative order.
func (c *Collection) Matches(s string) *Match {
	return c.matchFrom([]rune(s), 0)
}

// FindAll returns all non-overlapping matches, earliest first.
func (c *Collection) FindAll(s string) []Match {
	src := []rune(s)
	var out []Match
	pos := 0
	for pos <= len(src) {
		m := c.matchFrom(src, pos)
		if m == nil {
			break
		}
		out = append(out, *m)
		if m.end > pos {
			pos = m.end
		} else {
			pos++ // zero-width match, force progress
		}
	}
	return out
}

// Sub replaces every non-overlapping match of any alternative with repl.
func (c *Collection) Sub(repl, s string) string {
	out := s
	for _, re := range c.exprs {
		out = re.ReplaceAllString(out, repl)
	}
	return out
}

// matchFrom finds the earliest match at or after rune offset pos.
func (c *Collection) matchFrom(src []rune, pos int) *Match {
	if pos > len(src) {
		return nil
	}
	tail := string(src[pos:])
	// Byte offset -> rune offset table for the tail.
	best := (*Match)(nil)
	for _, re := range c.exprs {
		loc := re.FindStringSubmatchIndex(tail)
		if loc == nil {
			continue
		}
		start := pos + runeLen(tail[:loc[0]])
		end := pos + runeLen(tail[:loc[1]])
		if best != nil && (start > best.start || (start == best.start && end <= best.end)) {
			continue
		}
		m := &Match{re: re, src: src, start: start, end: end}
		m.subs = make([]int, len(loc))
		for i, b := range loc {
			if b < 0 {
				m.subs[i] = -1
				continue
			}
			m.subs[i] = pos + runeLen(tail[:b])
		}
		best = m
	}
	return best
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// Span returns the [start, end) rune offsets of the whole match.
func (m *Match) Span() (int, int) { return m.start, m.end }

// Group returns the full matched text.
func (m *Match) Group() string { return string(m.src[m.start:m.end]) }

// GroupN returns the text of capture group i, or "" when it did not
// participate in the match. Group 0 is the whole match.
func (m *Match) GroupN(i int) string {
	if 2*i+1 >= len(m.subs) || m.subs[2*i] < 0 {
		return ""
	}
	return string(m.src[m.subs[2*i]:m.subs[2*i+1]])
}

// GroupDict returns named capture groups and their matched text. Groups that
// did not participate are omitted.
func (m *Match) GroupDict() map[string]string {
	out := make(map[string]string)
	for i, name := range m.re.SubexpNames() {
		if name == "" || 2*i+1 >= len(m.subs) || m.subs[2*i] < 0 {
			continue
		}
		out[name] = string(m.src[m.subs[2*i]:m.subs[2*i+1]])
	}
	return out
}

// Conjunction holds the separators recognized when splitting a clause into
// coordinate items: enumeration commas, sentence punctuation and the
// conjunctions 及, 与, 和.
var Conjunction = MustNew("conjunction",
	`[、,，.．？?。！!：:;；]`,
	`[及与和]`,
)

// SplitConjunction splits s on Conjunction separators, dropping the ones
// listed in keep (verbatim separator text that must not act as a splitter).
// Empty fields are discarded. The observed separators are returned alongside
// the fields; len(seps) == len(fields)-1 when the text has no trailing
// separator.
func SplitConjunction(s string, keep ...string) (fields, seps []string) {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		for _, r := range k {
			kept[string(r)] = true
		}
	}
	src := []rune(s)
	cur := make([]rune, 0, len(src))
	for _, r := range src {
		tok := string(r)
		if Conjunction.Matches(tok) != nil && !kept[tok] {
			if len(cur) > 0 {
				fields = append(fields, string(cur))
				seps = append(seps, tok)
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		fields = append(fields, string(cur))
	} else if len(seps) > 0 {
		seps = seps[:len(seps)-1]
	}
	return fields, seps
}
