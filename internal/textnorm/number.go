package textnorm

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// cnDigits maps single Chinese digits to their value.
var cnDigits = map[rune]int64{
	'零': 0, '〇': 0,
	'一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// cnUnits maps multiplier characters to their value.
var cnUnits = map[rune]int64{
	'十': 10, '百': 100, '千': 1000, '万': 10000, '亿': 100000000,
}

// ParseChineseNumber converts a Chinese numeral (一百二十三, 九十, 十五, …),
// a plain ASCII digit string, or a mixed form like 2亿 to an integer. It is
// total: bad input returns ok=false, never a panic.
func ParseChineseNumber(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	var total, section, current int64
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			current = current*10 + int64(r-'0')
			seen = true
			continue
		}
		if d, ok := cnDigits[r]; ok {
			current = current*10 + d
			seen = true
			continue
		}
		u, ok := cnUnits[r]
		if !ok {
			return 0, false
		}
		seen = true
		switch u {
		case 10000, 100000000:
			// A bare 万/亿 with no digits before it is a unit word
			// (万元, 亿份), not a numeral.
			if section+current == 0 {
				return 0, false
			}
			section = (section + current) * u
			total += section
			section = 0
		default:
			if current == 0 {
				current = 1 // leading 十 as in 十五
			}
			section += current * u
		}
		current = 0
	}
	if !seen {
		return 0, false
	}
	return total + section + current, true
}

// FormatNumberText renders a Chinese numeral or digit string as a decimal
// string, preserving a 点-separated fraction (五点五 -> "5.5").
func FormatNumberText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s, true
	}
	intPart, fracPart, hasFrac := strings.Cut(s, "点")
	n, ok := ParseChineseNumber(intPart)
	if !ok {
		return "", false
	}
	if !hasFrac {
		return strconv.FormatInt(n, 10), true
	}
	frac, ok := formatDigitRun(fracPart)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10) + "." + frac, true
}

var (
	pctForm     = regexp.MustCompile(`^(\d+(?:\.\d+)?)[%％]$`)
	cnPctForm   = regexp.MustCompile(`^百分之(.+)$`)
	decimalForm = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ParsePercent reads any of the unit forms "50%", "50％", "百分之五十",
// "0.5" and returns the value as a rational in [0, 1] scale terms
// ("50%" -> 1/2). Plain decimals in (0, 1) are taken as already scaled;
// decimals >= 1 without a percent sign are rejected.
func ParsePercent(s string) (*big.Rat, bool) {
	s = CleanText(s)
	if m := pctForm.FindStringSubmatch(s); m != nil {
		if r, ok := parseRat(m[1]); ok {
			return r.Quo(r, big.NewRat(100, 1)), true
		}
		return nil, false
	}
	if m := cnPctForm.FindStringSubmatch(s); m != nil {
		v, ok := FormatNumberText(m[1])
		if !ok {
			return nil, false
		}
		if r, ok := parseRat(v); ok {
			return r.Quo(r, big.NewRat(100, 1)), true
		}
		return nil, false
	}
	if decimalForm.MatchString(s) {
		r, ok := parseRat(s)
		if !ok || r.Cmp(big.NewRat(1, 1)) > 0 {
			return nil, false
		}
		return r, true
	}
	return nil, false
}

// ParseDecimal reads an ASCII or Chinese numeric literal as a rational.
func ParseDecimal(s string) (*big.Rat, bool) {
	s = CleanText(s)
	if decimalForm.MatchString(s) {
		return parseRat(s)
	}
	if v, ok := FormatNumberText(s); ok {
		return parseRat(v)
	}
	return nil, false
}

func parseRat(s string) (*big.Rat, bool) {
	r := new(big.Rat)
	if _, ok := r.SetString(s); !ok {
		return nil, false
	}
	return r, true
}
