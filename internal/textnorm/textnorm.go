// Package textnorm canonicalizes paragraph text for comparison. Raw text is
// never mutated in place; callers keep the original for display and compare
// the normalized form.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// ConvertType selects which literal forms Normalize folds to a canonical
// shape before comparison.
type ConvertType string

const (
	ConvertNumber     ConvertType = "NUMBER"
	ConvertPercentage ConvertType = "PERCENTAGE"
	ConvertDate       ConvertType = "DATE"
)

// punctTable maps CJK punctuation to ASCII where the two are semantically
// identical in contract text. 。 and 、 have no ASCII equivalent and are
// kept.
var punctTable = map[rune]rune{
	'，': ',',
	'：': ':',
	'；': ';',
	'？': '?',
	'！': '!',
	'．': '.',
	'（': '(',
	'）': ')',
	'“': '"',
	'”': '"',
	'‘': '\'',
	'’': '\'',
	'～': '~',
}

var (
	footnoteTail = regexp.MustCompile(`([①②③④⑤⑥⑦⑧⑨⑩]|[\[【]注?\d+[\]】])+$`)
	spaceRun     = regexp.MustCompile(`[ \t\x{3000}]+`)

	percentRe = regexp.MustCompile(`百分之([零〇一二两三四五六七八九十百千万亿]+(?:点[零〇一二三四五六七八九]+)?|\d+(?:\.\d+)?)`)
	unitNumRe = regexp.MustCompile(`([零〇一二两三四五六七八九十百千万亿]+)(天|日|个月|月|年|季度|万元|亿元|元|份|次|倍|项|条|款|个)`)
	dateRe    = regexp.MustCompile(`([〇零一二三四五六七八九]{2,4})年([〇零一二三四五六七八九十]{1,3})月([〇零一二三四五六七八九十]{1,3})日`)
)

// CleanText strips footnote tails, collapses whitespace runs and folds
// full-width characters to their ASCII counterparts where the meaning is
// unchanged.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = footnoteTail.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := punctTable[r]; ok {
			b.WriteRune(repl)
			continue
		}
		p := width.LookupRune(r)
		if p.Kind() == width.EastAsianFullwidth {
			if n := p.Narrow(); n > 0 && n < 0x80 {
				b.WriteRune(n)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize rewrites the literal forms selected by types into canonical
// shapes. The result is for comparison only.
func Normalize(s string, types []ConvertType) string {
	out := CleanText(s)
	for _, t := range types {
		switch t {
		case ConvertPercentage:
			out = normalizePercent(out)
		case ConvertDate:
			out = normalizeDate(out)
		case ConvertNumber:
			out = normalizeNumber(out)
		}
	}
	return out
}

func normalizePercent(s string) string {
	return percentRe.ReplaceAllStringFunc(s, func(m string) string {
		body := strings.TrimPrefix(m, "百分之")
		if v, ok := FormatNumberText(body); ok {
			return v + "%"
		}
		return m
	})
}

func normalizeNumber(s string) string {
	return unitNumRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := unitNumRe.FindStringSubmatch(m)
		if v, ok := FormatNumberText(sub[1]); ok {
			return v + sub[2]
		}
		return m
	})
}

func normalizeDate(s string) string {
	return dateRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := dateRe.FindStringSubmatch(m)
		y, okY := formatDigitRun(sub[1])
		mo, okM := FormatNumberText(sub[2])
		d, okD := FormatNumberText(sub[3])
		if !okY || !okM || !okD {
			return m
		}
		return y + "年" + mo + "月" + d + "日"
	})
}

// formatDigitRun converts a positional run of Chinese digits (as used in
// years, 二〇二三) to ASCII digits.
func formatDigitRun(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		d, ok := cnDigits[r]
		if !ok {
			return "", false
		}
		b.WriteByte(byte('0' + d))
	}
	return b.String(), true
}
