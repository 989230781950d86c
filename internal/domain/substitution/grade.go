package substitution

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// GradeKey is one of the six school-year buckets shown on the kiosk.
type GradeKey int

const (
	Grade7  GradeKey = 7
	Grade8  GradeKey = 8
	Grade9  GradeKey = 9
	Grade10 GradeKey = 10
	Grade11 GradeKey = 11
	Grade12 GradeKey = 12
)

// AllGrades lists every grade in ascending order.
var AllGrades = []GradeKey{Grade7, Grade8, Grade9, Grade10, Grade11, Grade12}

// DisplayOrder is the two-column order used by the kiosk tables
// (left column 7, 9, 11; right column 8, 10, 12).
var DisplayOrder = []GradeKey{Grade7, Grade9, Grade11, Grade8, Grade10, Grade12}

func (g GradeKey) String() string {
	return strconv.Itoa(int(g))
}

// Valid reports whether g is one of the known grades.
func (g GradeKey) Valid() bool {
	return g >= Grade7 && g <= Grade12
}

// ParseGradeKey parses "7".."12".
func ParseGradeKey(s string) (GradeKey, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid grade %q: %w", s, err)
	}
	g := GradeKey(n)
	if !g.Valid() {
		return 0, fmt.Errorf("invalid grade %q: must be between 7 and 12", s)
	}
	return g, nil
}

// GradeSet is an unordered set of grades.
type GradeSet map[GradeKey]struct{}

func (s GradeSet) Contains(g GradeKey) bool {
	_, ok := s[g]
	return ok
}

// Sorted returns the grades in ascending order.
func (s GradeSet) Sorted() []GradeKey {
	out := make([]GradeKey, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	separatorPattern     = regexp.MustCompile(`[,/\s]+`)
	nonAlnumPattern      = regexp.MustCompile(`[^a-z0-9]`)
	classTokenPattern    = regexp.MustCompile(`^(7|8|9|10|11|12)[a-z]?$`)
	qualificationPattern = regexp.MustCompile(`^q([1-4])$`)
)

// ExtractGrades maps a free-text class list such as "7a 7b, 8c" or "Q2" to
// the grades it mentions. Unknown tokens are ignored; the result may be empty.
func ExtractGrades(classes string) GradeSet {
	grades := make(GradeSet)
	normalized := separatorPattern.ReplaceAllString(strings.ToLower(classes), " ")

	for _, token := range strings.Fields(normalized) {
		token = nonAlnumPattern.ReplaceAllString(token, "")
		if token == "" {
			continue
		}
		if m := classTokenPattern.FindStringSubmatch(token); m != nil {
			n, _ := strconv.Atoi(m[1])
			grades[GradeKey(n)] = struct{}{}
			continue
		}
		if m := qualificationPattern.FindStringSubmatch(token); m != nil {
			// Q1/Q2 are the first qualification year, Q3/Q4 the second.
			if m[1] == "1" || m[1] == "2" {
				grades[Grade11] = struct{}{}
			} else {
				grades[Grade12] = struct{}{}
			}
		}
	}
	return grades
}
