package substitution

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanDocument is the raw HTML of one plan page as last fetched.
type PlanDocument struct {
	ID          int64
	PlanUUID    uuid.UUID
	GroupName   string
	PlanDate    string
	Title       string
	SourceDate  string
	SourceTitle string
	DetailURL   string
	RawHTML     string
	ContentHash string
	PageNumber  *int
	PageCount   *int
	FetchedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentRepository persists plan pages.
type DocumentRepository interface {
	// Save upserts the document and reports whether its content changed.
	Save(ctx context.Context, doc *PlanDocument) (bool, error)
	GetByDetailURL(ctx context.Context, detailURL string) (*PlanDocument, error)
	ListByPlan(ctx context.Context, planUUID uuid.UUID) ([]*PlanDocument, error)
}

var (
	pagePattern         = regexp.MustCompile(`(?i)seite\s+(\d+)\s*/\s*(\d+)`)
	fileExtPattern      = regexp.MustCompile(`(?i)\.html?$`)
	trailingDigitsRegex = regexp.MustCompile(`(\d+)$`)
)

// ContentHash is the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FileName returns the last path segment of a detail URL.
func FileName(detailURL string) string {
	idx := strings.LastIndex(detailURL, "/") + 1
	if idx <= 0 || idx >= len(detailURL) {
		return detailURL
	}
	return detailURL[idx:]
}

// ApplyPageInfo fills PageNumber and PageCount from a "Seite n / m" marker in
// the plan date, falling back to trailing digits of the file name.
func (d *PlanDocument) ApplyPageInfo() {
	d.PageNumber, d.PageCount = nil, nil
	if m := pagePattern.FindStringSubmatch(d.PlanDate); m != nil {
		d.PageNumber = atoiPtr(m[1])
		d.PageCount = atoiPtr(m[2])
	}
	if d.PageNumber == nil {
		name := fileExtPattern.ReplaceAllString(d.Title, "")
		if m := trailingDigitsRegex.FindStringSubmatch(name); m != nil {
			d.PageNumber = atoiPtr(m[1])
		}
	}
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
