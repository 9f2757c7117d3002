package textnorm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim and collapse", "  基金 管理人　 ", "基金管理人"},
		{"cjk punct to ascii", "管理人：基金；（一）", "管理人:基金;(一)"},
		{"fullwidth ascii folded", "５０％，ＡＢＣ", "50%,ABC"},
		{"ideographic stop kept", "本基金。", "本基金。"},
		{"footnote tail stripped", "基金资产净值①", "基金资产净值"},
		{"bracket footnote stripped", "基金资产净值[1]", "基金资产净值"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestNormalizePercentage(t *testing.T) {
	got := Normalize("不低于基金资产净值的百分之五", []ConvertType{ConvertPercentage})
	assert.Equal(t, "不低于基金资产净值的5%", got)

	got = Normalize("不低于基金资产净值的5%", []ConvertType{ConvertPercentage})
	assert.Equal(t, "不低于基金资产净值的5%", got)

	got = Normalize("百分之五十五点五", []ConvertType{ConvertPercentage})
	assert.Equal(t, "55.5%", got)
}

func TestNormalizeNumber(t *testing.T) {
	got := Normalize("不超过九十天", []ConvertType{ConvertNumber})
	assert.Equal(t, "不超过90天", got)

	got = Normalize("每三个月开放一次", []ConvertType{ConvertNumber})
	assert.Equal(t, "每3个月开放1次", got)

	// 万/亿 as bare unit words stay untouched.
	got = Normalize("不低于30万元", []ConvertType{ConvertNumber})
	assert.Equal(t, "不低于30万元", got)

	got = Normalize("不低于四十万元", []ConvertType{ConvertNumber})
	assert.Equal(t, "不低于400000元", got)
}

func TestNormalizeDate(t *testing.T) {
	got := Normalize("二〇二三年十二月三十一日", []ConvertType{ConvertDate})
	assert.Equal(t, "2023年12月31日", got)
}

func TestParseChineseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"九十", 90, true},
		{"十五", 15, true},
		{"十", 10, true},
		{"一百二十三", 123, true},
		{"三百六十五", 365, true},
		{"两千", 2000, true},
		{"一万零五十", 10050, true},
		{"三亿", 300000000, true},
		{"60", 60, true},
		{"佰", 0, false},
		{"万", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseChineseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePercentUnitForms(t *testing.T) {
	// "50%", "百分之五十" and "0.5" compare equal.
	half := big.NewRat(1, 2)
	for _, in := range []string{"50%", "５０％", "百分之五十", "0.5"} {
		r, ok := ParsePercent(in)
		require.True(t, ok, in)
		assert.Zero(t, r.Cmp(half), in)
	}

	_, ok := ParsePercent("五十天")
	assert.False(t, ok)
	_, ok = ParsePercent("1.5")
	assert.False(t, ok)
}

func TestParseDecimal(t *testing.T) {
	r, ok := ParseDecimal("三十")
	require.True(t, ok)
	assert.Zero(t, r.Cmp(big.NewRat(30, 1)))

	r, ok = ParseDecimal("0.25")
	require.True(t, ok)
	assert.Zero(t, r.Cmp(big.NewRat(1, 4)))
}

func TestParseSerial(t *testing.T) {
	tests := []struct {
		in   string
		kind SerialKind
		n    int64
		rest string
	}{
		{"1、基金份额的申购", SerialArabicDot, 1, "基金份额的申购"},
		{"（一）基金托管人", SerialParenChinese, 1, "基金托管人"},
		{"(2)基金管理人", SerialParenArabic, 2, "基金管理人"},
		{"十二、其他", SerialChineseDot, 12, "其他"},
		{"第十二条基金的投资", SerialClause, 12, "基金的投资"},
		{"第3项", SerialItem, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, n, rest, ok := ParseSerial(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.rest, rest)
		})
	}

	_, _, _, ok := ParseSerial("基金份额")
	assert.False(t, ok)
}

func TestFormatSerialRoundTrip(t *testing.T) {
	for _, kind := range []SerialKind{SerialArabicDot, SerialChineseDot, SerialParenArabic, SerialParenChinese, SerialClause, SerialItem} {
		for _, n := range []int64{1, 2, 10, 12, 21, 110} {
			k, got, _, ok := ParseSerial(FormatSerial(kind, n))
			require.True(t, ok, "%s %d", kind, n)
			assert.Equal(t, kind, k)
			assert.Equal(t, n, got)
		}
	}
}

func TestFormatChineseNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "零"}, {5, "五"}, {10, "十"}, {12, "十二"}, {21, "二十一"},
		{100, "一百"}, {105, "一百零五"}, {110, "一百一十"}, {365, "三百六十五"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatChineseNumber(tt.n), "%d", tt.n)
	}
}
