package substitution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEntries_FanOut(t *testing.T) {
	entry := &Entry{Classes: "7a 8b", Period: "2", Subject: "Ma"}

	grouped, unclassified := GroupEntries([]*Entry{entry})

	require.Len(t, grouped[Grade7], 1)
	require.Len(t, grouped[Grade8], 1)
	assert.Same(t, entry, grouped[Grade7][0])
	assert.Same(t, entry, grouped[Grade8][0])
	assert.Equal(t, "Ma", grouped[Grade8][0].Subject)
	assert.Equal(t, "7a 8b", entry.Classes)
	assert.Empty(t, unclassified)
}

func TestGroupEntries_Scenario(t *testing.T) {
	first := &Entry{Classes: "9c", Period: "3", Type: "Entfall"}
	second := &Entry{Classes: "Q2", Period: "5", Type: "Vertr."}
	third := &Entry{Classes: "Exkursion", Period: "1"}

	grouped, unclassified := GroupEntries([]*Entry{first, second, third})

	assert.Equal(t, []*Entry{first}, grouped[Grade9])
	assert.Equal(t, []*Entry{second}, grouped[Grade11])
	for _, g := range []GradeKey{Grade7, Grade8, Grade10, Grade12} {
		assert.Empty(t, grouped[g], "grade %s", g)
	}
	for _, bucket := range grouped {
		assert.NotContains(t, bucket, third)
	}
	assert.Equal(t, []*Entry{third}, unclassified)
	assert.Equal(t, 2, grouped.Count())
}

func TestGroupEntries_Q3GoesToTwelve(t *testing.T) {
	entry := &Entry{Classes: "Q3", Period: "5"}
	grouped, _ := GroupEntries([]*Entry{entry})
	assert.Equal(t, []*Entry{entry}, grouped[Grade12])
	assert.Empty(t, grouped[Grade11])
}

func TestGroupEntries_PreservesOrder(t *testing.T) {
	a := &Entry{Classes: "10a", Period: "1"}
	b := &Entry{Classes: "7b", Period: "2"}
	c := &Entry{Classes: "10c, 7a", Period: "3"}
	d := &Entry{Classes: "10b", Period: "4"}

	grouped, _ := GroupEntries([]*Entry{a, b, nil, c, d})

	assert.Equal(t, []*Entry{a, c, d}, grouped[Grade10])
	assert.Equal(t, []*Entry{b, c}, grouped[Grade7])
}

func TestGroupEntries_AllBucketsPresent(t *testing.T) {
	grouped, unclassified := GroupEntries(nil)
	assert.Len(t, grouped, len(AllGrades))
	for _, g := range AllGrades {
		assert.NotNil(t, grouped[g])
	}
	assert.Nil(t, unclassified)
}

func TestForGrade(t *testing.T) {
	a := &Entry{Classes: "Q1"}
	b := &Entry{Classes: "12a"}
	assert.Equal(t, []*Entry{a}, ForGrade([]*Entry{a, b}, Grade11))
}

func TestIsTodayPlan(t *testing.T) {
	now := time.Date(2025, time.April, 23, 9, 0, 0, 0, time.Local)

	assert.True(t, IsTodayPlan("Vertretungsplan heute", now))
	assert.False(t, IsTodayPlan("morgen", now))
	assert.True(t, IsTodayPlan("23.4.2025 Mittwoch", now))
	assert.True(t, IsTodayPlan("23.04.2025", now))
	assert.False(t, IsTodayPlan("24.4.2025 Donnerstag", now))
	assert.False(t, IsTodayPlan("", now))

	plans := []*Plan{{Date: "24.4.2025"}, {Date: "23.4.2025"}, nil}
	assert.Equal(t, []*Plan{plans[1]}, TodayPlans(plans, now))
}

func TestMergeNews(t *testing.T) {
	merged := MergeNews(nil, &DailyNews{Date: "23.4.", NewsItems: []string{"A", "B"}})
	merged = MergeNews(merged, &DailyNews{NewsItems: []string{"B", "C"}})
	merged = MergeNews(merged, nil)

	assert.Equal(t, "23.4.", merged.Date)
	assert.Equal(t, []string{"A", "B", "C"}, merged.NewsItems)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1, Priority("Heute"))
	assert.Equal(t, 2, Priority("morgen, 24.4."))
	assert.Equal(t, 3, Priority("25.4.2025"))
}

func TestEntryType(t *testing.T) {
	assert.True(t, (&Entry{Type: "Entfall"}).IsCancellation())
	assert.True(t, (&Entry{Type: "Ausfall"}).IsCancellation())
	assert.True(t, (&Entry{Type: "Vertr."}).IsSubstitution())
	assert.True(t, (&Entry{Type: "Vertretung"}).IsSubstitution())
	assert.False(t, (&Entry{Type: "Raum"}).IsSubstitution())
}

func TestApplyPageInfo(t *testing.T) {
	doc := &PlanDocument{PlanDate: "2024-01-01 Seite 3/7", Title: "subst_001.htm"}
	doc.ApplyPageInfo()
	require.NotNil(t, doc.PageNumber)
	require.NotNil(t, doc.PageCount)
	assert.Equal(t, 3, *doc.PageNumber)
	assert.Equal(t, 7, *doc.PageCount)

	doc = &PlanDocument{PlanDate: "23.4.2025 Mittwoch", Title: "subst_002.htm"}
	doc.ApplyPageInfo()
	require.NotNil(t, doc.PageNumber)
	assert.Equal(t, 2, *doc.PageNumber)
	assert.Nil(t, doc.PageCount)

	doc = &PlanDocument{Title: "index.htm"}
	doc.ApplyPageInfo()
	assert.Nil(t, doc.PageNumber)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "subst_001.htm", FileName("https://example.org/a/b/subst_001.htm"))
	assert.Equal(t, "plain", FileName("plain"))
	assert.Equal(t, "https://example.org/", FileName("https://example.org/"))
}

func TestSortPlans(t *testing.T) {
	plans := []*Plan{
		{Date: "22.10.2025", SortPriority: 3},
		{Date: "", SortPriority: 1},
		{Date: "21.10.2025", SortPriority: 2},
		{Date: "20.10.2025", SortPriority: 1},
	}
	SortPlans(plans)

	assert.Equal(t, "20.10.2025", plans[0].Date)
	assert.Equal(t, "", plans[1].Date)
	assert.Equal(t, "21.10.2025", plans[2].Date)
	assert.Equal(t, "22.10.2025", plans[3].Date)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))
}
