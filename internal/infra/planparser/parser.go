// Package planparser turns Untis substitution plan pages into plans.
package planparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"school_dashboard/internal/domain/substitution"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	newsMarker     = "Nachrichten zum Tag"
	newsSkipMarker = "Untis Stundenplan"
)

// Document is a parsed plan page together with its HTML as fetched.
type Document struct {
	Plan    *substitution.Plan
	RawHTML string
}

type Parser struct {
	httpClient *http.Client
	log        *logrus.Entry
}

func New(httpClient *http.Client, log *logrus.Entry) *Parser {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Parser{httpClient: httpClient, log: log.WithField("component", "plan_parser")}
}

// Fetch downloads the page at url, decodes it to UTF-8 and parses it.
func (p *Parser) Fetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build plan request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch plan %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch plan %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect plan charset: %w", err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", url, err)
	}
	plan, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"url": url, "entries": len(plan.Entries)}).Debug("Parsed plan page")
	return &Document{Plan: plan, RawHTML: string(raw)}, nil
}

// Parse reads a UTF-8 plan page.
func Parse(r io.Reader) (*substitution.Plan, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse plan html: %w", err)
	}
	return parseDocument(doc), nil
}

func parseDocument(doc *goquery.Document) *substitution.Plan {
	plan := &substitution.Plan{Entries: make([]*substitution.Entry, 0)}

	if title := doc.Find("div.mon_title").First(); title.Length() > 0 {
		plan.Date = text(title)
	}
	plan.News = &substitution.DailyNews{Date: plan.Date, NewsItems: make([]string, 0)}

	var info []string
	doc.Find("table.info tr.info").Each(func(_ int, s *goquery.Selection) {
		if t := text(s); t != "" {
			info = append(info, t)
		}
	})
	plan.Title = strings.Join(info, " ")

	extractNews(doc, plan.News)

	table := doc.Find("table.mon_list").First()
	if table.Length() == 0 {
		return plan
	}
	columns := columnSetters(table.Find("tr.list th"))
	table.Find("tr.list.odd, tr.list.even").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		entry := &substitution.Entry{Date: plan.Date}
		cells.Each(func(i int, cell *goquery.Selection) {
			if set, ok := columns[i]; ok {
				set(entry, text(cell))
			}
		})
		plan.Entries = append(plan.Entries, entry)
	})
	return plan
}

type setter func(e *substitution.Entry, v string)

// columnSetters maps column indexes to entry fields by header text. Order of
// the checks matters: "(Fach)" must win over "Fach".
func columnSetters(headers *goquery.Selection) map[int]setter {
	columns := make(map[int]setter, headers.Length())
	headers.Each(func(i int, th *goquery.Selection) {
		h := strings.ToLower(text(th))
		switch {
		case strings.Contains(h, "klasse"):
			columns[i] = func(e *substitution.Entry, v string) { e.Classes = v }
		case strings.Contains(h, "stunde"):
			columns[i] = func(e *substitution.Entry, v string) { e.Period = v }
		case strings.Contains(h, "abwesend"):
			columns[i] = func(e *substitution.Entry, v string) { e.Absent = v }
		case strings.Contains(h, "vertreter"):
			columns[i] = func(e *substitution.Entry, v string) { e.Substitute = v }
		case strings.Contains(h, "(fach)"):
			columns[i] = func(e *substitution.Entry, v string) { e.OriginalSubject = v }
		case strings.Contains(h, "fach"):
			columns[i] = func(e *substitution.Entry, v string) { e.Subject = v }
		case strings.Contains(h, "raum"):
			columns[i] = func(e *substitution.Entry, v string) { e.NewRoom = v }
		case strings.Contains(h, "art"):
			columns[i] = func(e *substitution.Entry, v string) { e.Type = v }
		case strings.Contains(h, "bemerkung"):
			columns[i] = func(e *substitution.Entry, v string) { e.Comment = v }
		}
	})
	return columns
}

// extractNews collects the items following the "Nachrichten zum Tag" marker.
// Inside an info table these are the following rows; elsewhere the following
// p, div and font siblings up to the next table.
func extractNews(doc *goquery.Document, news *substitution.DailyNews) {
	header := findOwnText(doc.Selection, newsMarker)
	if header == nil {
		return
	}

	add := func(s *goquery.Selection) {
		if t := text(s); t != "" && !strings.Contains(t, newsSkipMarker) {
			news.NewsItems = append(news.NewsItems, t)
		}
	}

	if row := header.Closest("tr"); row.Length() > 0 {
		row.NextAll().Filter("tr").Each(func(_ int, s *goquery.Selection) { add(s) })
	} else {
		header.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.Is("table") {
				return false
			}
			if s.Is("p, div, font") {
				add(s)
			}
			return true
		})
	}

	if len(news.NewsItems) == 0 {
		doc.Find("font[size='4']").Each(func(_ int, s *goquery.Selection) { add(s) })
	}
}

// findOwnText returns the first element whose direct text contains needle.
func findOwnText(root *goquery.Selection, needle string) *goquery.Selection {
	var found *goquery.Selection
	root.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, n := range s.Nodes {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode && strings.Contains(c.Data, needle) {
					found = s
					return false
				}
			}
		}
		return true
	})
	return found
}

// text is the trimmed text of s with whitespace runs, including non-breaking
// spaces, collapsed to one space.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
