package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]ResultItem{
		{IsCompliance: true},
		{IsCompliance: false},
		{IsCompliance: true},
	})
	assert.Equal(t, AuditSummary{Rules: 3, Compliant: 2, Violations: 1}, s)

	assert.Equal(t, AuditSummary{}, Summarize(nil))
}

func TestReasonBlocking(t *testing.T) {
	assert.True(t, Reason{Kind: ReasonMatchFailed}.Blocking())
	assert.False(t, Reason{Kind: ReasonMatchFailed, Ignored: true}.Blocking())
	assert.False(t, Reason{Kind: ReasonMatch, Matched: true}.Blocking())
}

func TestResultItemFinalize(t *testing.T) {
	r := ResultItem{Reasons: []Reason{
		{Kind: ReasonMatch, Matched: true},
		{Kind: ReasonMissContent},
	}}
	r.Finalize()
	assert.False(t, r.IsCompliance)

	r = ResultItem{Reasons: []Reason{
		{Kind: ReasonMatch, Matched: true},
		{Kind: ReasonMatchFailed, Ignored: true},
	}}
	r.Finalize()
	assert.True(t, r.IsCompliance)

	r = ResultItem{}
	r.Finalize()
	assert.True(t, r.IsCompliance)
}

func TestOutlinesMerge(t *testing.T) {
	o := Outlines{1: {{0, 0, 1, 1}}}
	o.Merge(Outlines{1: {{2, 2, 3, 3}}, 4: {{5, 5, 6, 6}}})
	assert.Len(t, o[1], 2)
	assert.Len(t, o[4], 1)
}

func TestOutlinesMinPage(t *testing.T) {
	assert.Equal(t, 0, Outlines{}.MinPage())
	assert.Equal(t, 3, Outlines{7: nil, 3: nil, 12: nil}.MinPage())
}

func TestParagraphOutlines(t *testing.T) {
	p := Paragraph{Page: 5, Outline: []BBox{{1, 1, 2, 2}}}
	assert.Equal(t, Outlines{5: {{1, 1, 2, 2}}}, p.Outlines())

	assert.Empty(t, Paragraph{Page: 5}.Outlines())
}

func TestChapterContains(t *testing.T) {
	ch := &Chapter{Start: 3, End: 7}
	assert.True(t, ch.Contains(3))
	assert.True(t, ch.Contains(7))
	assert.False(t, ch.Contains(2))
	assert.False(t, ch.Contains(8))
}

func TestClassificationHas(t *testing.T) {
	cls := Classification{ClassifyFundType: {TagStock, TagIndex}}
	assert.True(t, cls.Has(ClassifyFundType, TagIndex))
	assert.False(t, cls.Has(ClassifyFundType, TagBond))
	assert.False(t, cls.Has(ClassifyOperateMode, TagOpen))
	assert.True(t, cls.HasTag(TagStock))
	assert.False(t, cls.HasTag(TagOpen))
}

func TestTagUniverseConsistent(t *testing.T) {
	// Every axis lists at least one tag and no duplicates.
	for axis, tags := range TagUniverse {
		assert.NotEmptyf(t, tags, "axis %s", axis)
		seen := map[Tag]bool{}
		for _, tag := range tags {
			assert.Falsef(t, seen[tag], "axis %s repeats %s", axis, tag)
			seen[tag] = true
		}
	}
}

func TestFamiliesOrder(t *testing.T) {
	assert.Equal(t, []RuleType{
		FamilyNormal,
		FamilyReplace,
		FamilyMultipleSentences,
		FamilySingleSentenceMultiple,
	}, Families)
}

func TestRelationConstructors(t *testing.T) {
	eq := Equal(ClassifyFundType, TagStock, TagBond)
	assert.Equal(t, ClassifyFundType, eq.Name)
	require.Len(t, eq.Values, 2)
	assert.Equal(t, RelEqual, eq.Values[0].Single.Relation)
	assert.Equal(t, TagStock, eq.Values[0].Single.Value)
	assert.Equal(t, TagBond, eq.Values[1].Single.Value)

	ne := Unequal(ClassifyOperateMode, TagClose)
	require.Len(t, ne.Values, 1)
	assert.Equal(t, RelUnequal, ne.Values[0].Single.Relation)

	all := AllOf(ClassifyFundType, FundTypeRelation{Value: TagStock, Relation: RelEqual})
	require.Len(t, all.Values, 1)
	assert.Nil(t, all.Values[0].Single)
	assert.Len(t, all.Values[0].AllMatch, 1)
}
