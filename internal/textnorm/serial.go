package textnorm

import (
	"regexp"
	"strconv"
)

// SerialKind identifies the numbering style of a paragraph prefix.
type SerialKind string

const (
	SerialArabicDot    SerialKind = "ARABIC_DOT"    // 1、 2.
	SerialChineseDot   SerialKind = "CHINESE_DOT"   // 一、
	SerialParenArabic  SerialKind = "PAREN_ARABIC"  // （1） (2)
	SerialParenChinese SerialKind = "PAREN_CHINESE" // （一） (二)
	SerialClause       SerialKind = "CLAUSE"        // 第一条
	SerialItem         SerialKind = "ITEM"          // 第1项
	SerialNone         SerialKind = ""
)

var serialForms = []struct {
	kind SerialKind
	re   *regexp.Regexp
}{
	{SerialClause, regexp.MustCompile(`^第([0-9零〇一二三四五六七八九十百千]+)条`)},
	{SerialItem, regexp.MustCompile(`^第([0-9零〇一二三四五六七八九十百千]+)[项款]`)},
	{SerialParenArabic, regexp.MustCompile(`^[（(](\d+)[)）]`)},
	{SerialParenChinese, regexp.MustCompile(`^[（(]([零〇一二三四五六七八九十百千]+)[)）]`)},
	{SerialArabicDot, regexp.MustCompile(`^(\d+)[、.．]`)},
	{SerialChineseDot, regexp.MustCompile(`^([零〇一二三四五六七八九十百千]+)[、.．]`)},
}

// ParseSerial recognizes a leading numbering prefix. rest is the text after
// the prefix; ok is false when s carries no recognized prefix.
func ParseSerial(s string) (kind SerialKind, n int64, rest string, ok bool) {
	for _, f := range serialForms {
		loc := f.re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		num := s[loc[2]:loc[3]]
		v, okN := ParseChineseNumber(num)
		if !okN {
			continue
		}
		return f.kind, v, s[loc[1]:], true
	}
	return SerialNone, 0, s, false
}

// FormatSerial regenerates a numbering prefix of the given kind.
func FormatSerial(kind SerialKind, n int64) string {
	switch kind {
	case SerialArabicDot:
		return strconv.FormatInt(n, 10) + "、"
	case SerialChineseDot:
		return FormatChineseNumber(n) + "、"
	case SerialParenArabic:
		return "（" + strconv.FormatInt(n, 10) + "）"
	case SerialParenChinese:
		return "（" + FormatChineseNumber(n) + "）"
	case SerialClause:
		return "第" + FormatChineseNumber(n) + "条"
	case SerialItem:
		return "第" + strconv.FormatInt(n, 10) + "项"
	}
	return ""
}

var cnDigitText = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// FormatChineseNumber renders n (0 <= n < 10000) in Chinese numerals using
// contract-style conventions: 10 -> 十, 12 -> 十二, 21 -> 二十一.
func FormatChineseNumber(n int64) string {
	if n < 0 || n >= 10000 {
		return strconv.FormatInt(n, 10)
	}
	if n < 10 {
		return cnDigitText[n]
	}
	var out string
	units := []struct {
		v int64
		s string
	}{{1000, "千"}, {100, "百"}, {10, "十"}}
	rem := n
	pendingZero := false
	for _, u := range units {
		d := rem / u.v
		rem %= u.v
		if d == 0 {
			if out != "" {
				pendingZero = true
			}
			continue
		}
		if pendingZero {
			out += "零"
			pendingZero = false
		}
		if d == 1 && u.v == 10 && out == "" {
			out += u.s // 十, not 一十
		} else {
			out += cnDigitText[d] + u.s
		}
	}
	if rem > 0 {
		if pendingZero {
			out += "零"
		}
		out += cnDigitText[rem]
	}
	return out
}
