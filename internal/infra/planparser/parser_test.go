package planparser

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func parseString(t *testing.T, html string) *testPlan {
	t.Helper()
	plan, err := Parse(strings.NewReader(html))
	require.NoError(t, err)
	return &testPlan{plan.Date, plan.Title, plan.News.NewsItems, len(plan.Entries)}
}

type testPlan struct {
	date    string
	title   string
	news    []string
	entries int
}

func TestParse_Fixture(t *testing.T) {
	f, err := os.Open("testdata/subst_001.htm")
	require.NoError(t, err)
	defer f.Close()

	plan, err := Parse(f)
	require.NoError(t, err)

	assert.Equal(t, "20.10.2025 Montag, Woche A (Seite 1 / 2)", plan.Date)
	assert.Equal(t, []string{"Unterrichtsfrei ab der 6. Stunde", "Die Sporthalle ist gesperrt."}, plan.News.NewsItems)
	assert.Equal(t, plan.Date, plan.News.Date)

	require.Len(t, plan.Entries, 2)
	first := plan.Entries[0]
	assert.Equal(t, "7a, 7b", first.Classes)
	assert.Equal(t, "1 - 2", first.Period)
	assert.Equal(t, "MÜL", first.Absent)
	assert.Equal(t, "SCH", first.Substitute)
	assert.Equal(t, "Ma", first.OriginalSubject)
	assert.Equal(t, "Ma", first.Subject)
	assert.Equal(t, "104", first.NewRoom)
	assert.Equal(t, "Vertretung", first.Type)
	assert.Equal(t, "", first.Comment)
	assert.Equal(t, plan.Date, first.Date)

	second := plan.Entries[1]
	assert.Equal(t, "Q3", second.Classes)
	assert.True(t, second.IsCancellation())
	assert.Equal(t, "Aufgaben im Moodle", second.Comment)
}

func TestParse_NewsFromSiblings(t *testing.T) {
	p := parseString(t, `<html><body><h2>Nachrichten zum Tag</h2>`+
		`<p>First</p><span>Ignore</span><div>Second</div>`+
		`<table class="mon_list"><tr><td>Table</td></tr></table><p>AfterTable</p></body></html>`)

	assert.Equal(t, []string{"First", "Second"}, p.news)
}

func TestParse_NewsFromInfoRows(t *testing.T) {
	p := parseString(t, `<html><body><table class="info">`+
		`<tr class="info"><td>Nachrichten zum Tag</td></tr>`+
		`<tr class="info"><td>Unterrichtsfrei 4-12 Std.</td></tr>`+
		`<tr class="info"><td>Die Sportflächen sind gesperrt.</td></tr>`+
		`</table></body></html>`)

	assert.Equal(t, []string{"Unterrichtsfrei 4-12 Std.", "Die Sportflächen sind gesperrt."}, p.news)
	assert.Equal(t, "Nachrichten zum Tag Unterrichtsfrei 4-12 Std. Die Sportflächen sind gesperrt.", p.title)
}

func TestParse_WithoutNews(t *testing.T) {
	plan, err := Parse(strings.NewReader(`<html><body><div class="mon_title">02.02.2024</div>` +
		`<table class="mon_list"><tr class="list"><th>Klasse</th><th>Vertreter</th></tr>` +
		`<tr class="list odd"><td>9B</td><td>MrX</td></tr></table></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, "02.02.2024", plan.Date)
	assert.Empty(t, plan.News.NewsItems)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "9B", plan.Entries[0].Classes)
	assert.Equal(t, "MrX", plan.Entries[0].Substitute)
}

func TestParse_NoTable(t *testing.T) {
	p := parseString(t, `<html><body><div class="mon_title">heute</div></body></html>`)
	assert.Equal(t, "heute", p.date)
	assert.Zero(t, p.entries)
}

func TestParser_FetchDecodesLatin1(t *testing.T) {
	// "Müller" in ISO-8859-1.
	body := "<html><body><div class=\"mon_title\">heute</div>" +
		"<table class=\"mon_list\"><tr class=\"list\"><th>Klasse</th><th>Abwesend</th></tr>" +
		"<tr class=\"list odd\"><td>8c</td><td>M\xfcller</td></tr></table></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		io.WriteString(w, body)
	}))
	defer srv.Close()

	doc, err := New(nil, testLogger()).Fetch(testContext(t), srv.URL+"/subst_001.htm")
	require.NoError(t, err)
	require.Len(t, doc.Plan.Entries, 1)
	assert.Equal(t, "Müller", doc.Plan.Entries[0].Absent)
	assert.Contains(t, doc.RawHTML, "Müller")
}

func TestParser_FetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(nil, testLogger()).Fetch(testContext(t), srv.URL)
	assert.Error(t, err)
}
