package substitution

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one row of a substitution plan. All fields are display strings.
type Entry struct {
	Classes         string `json:"classes"`
	Period          string `json:"period"`
	Absent          string `json:"absent"`
	Substitute      string `json:"substitute"`
	OriginalSubject string `json:"originalSubject"`
	Subject         string `json:"subject"`
	NewRoom         string `json:"newRoom"`
	Type            string `json:"type"`
	Comment         string `json:"comment"`
	Date            string `json:"date"`
}

// IsCancellation reports whether the entry marks a dropped lesson.
func (e *Entry) IsCancellation() bool {
	t := strings.ToLower(e.Type)
	return strings.Contains(t, "entfall") || strings.Contains(t, "ausfall")
}

// IsSubstitution reports whether the entry marks a covered lesson.
func (e *Entry) IsSubstitution() bool {
	t := strings.ToLower(e.Type)
	return strings.Contains(t, "vertr")
}

// DailyNews holds the "Nachrichten zum Tag" block of a plan.
type DailyNews struct {
	Date      string   `json:"date"`
	NewsItems []string `json:"newsItems"`
}

// Plan is a parsed substitution plan for a single day.
type Plan struct {
	Date    string     `json:"date"`
	Title   string     `json:"title"`
	Entries []*Entry   `json:"entries"`
	News    *DailyNews `json:"news"`
	// SortPriority is 1 for today's plans, 2 for tomorrow's and 3 otherwise.
	SortPriority int `json:"sortPriority"`
}

// TimeTable is a plan announcement as published by DSBmobile. Detail points
// at the HTML page holding the actual plan.
type TimeTable struct {
	UUID      uuid.UUID `json:"uuid"`
	GroupName string    `json:"groupName"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
}

// News is a DSBmobile news item.
type News struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// MergeNews appends the items of src to dst, skipping items already present.
func MergeNews(dst *DailyNews, src *DailyNews) *DailyNews {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = &DailyNews{Date: src.Date}
	}
	if dst.Date == "" {
		dst.Date = src.Date
	}
	seen := make(map[string]struct{}, len(dst.NewsItems))
	for _, item := range dst.NewsItems {
		seen[item] = struct{}{}
	}
	for _, item := range src.NewsItems {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		dst.NewsItems = append(dst.NewsItems, item)
	}
	return dst
}

// Priority orders plans for display from their group name: today first,
// then tomorrow, then the rest.
func Priority(date string) int {
	d := strings.ToLower(date)
	switch {
	case strings.Contains(d, "heute"):
		return 1
	case strings.Contains(d, "morgen"):
		return 2
	default:
		return 3
	}
}

var planDatePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)

// IsTodayPlan reports whether a plan date text ("23.4.2025 Mittwoch",
// "heute", ...) refers to the day of now.
func IsTodayPlan(date string, now time.Time) bool {
	d := strings.ToLower(date)
	if strings.Contains(d, "heute") {
		return true
	}
	if strings.Contains(d, "morgen") {
		return false
	}
	m := planDatePattern.FindStringSubmatch(d)
	if m == nil {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return day == now.Day() && time.Month(month) == now.Month() && year == now.Year()
}

// TodayPlans filters plans down to those for the day of now.
func TodayPlans(plans []*Plan, now time.Time) []*Plan {
	out := make([]*Plan, 0, len(plans))
	for _, p := range plans {
		if p != nil && IsTodayPlan(p.Date, now) {
			out = append(out, p)
		}
	}
	return out
}

// SortPlans orders plans by SortPriority, then by date text. Plans without a
// date go last within their priority.
func SortPlans(plans []*Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.SortPriority != b.SortPriority {
			return a.SortPriority < b.SortPriority
		}
		if a.Date == "" || b.Date == "" {
			return a.Date != "" && b.Date == ""
		}
		return a.Date < b.Date
	})
}
