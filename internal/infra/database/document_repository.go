package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"school_dashboard/internal/domain/substitution"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("plan document not found")

const documentColumns = `id, plan_uuid, group_name, plan_date, title, source_date, source_title,
               detail_url, raw_html, content_hash, page_number, page_count, fetched_at, updated_at`

type SQLDocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLDocumentRepository(db *sql.DB) *SQLDocumentRepository {
	return &SQLDocumentRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*substitution.PlanDocument, error) {
	d := &substitution.PlanDocument{}
	var planUUID string
	var pageNumber, pageCount sql.NullInt64
	err := row.Scan(&d.ID, &planUUID, &d.GroupName, &d.PlanDate, &d.Title, &d.SourceDate, &d.SourceTitle,
		&d.DetailURL, &d.RawHTML, &d.ContentHash, &pageNumber, &pageCount, &d.FetchedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if d.PlanUUID, err = uuid.Parse(planUUID); err != nil {
		return nil, fmt.Errorf("invalid plan uuid %q: %w", planUUID, err)
	}
	d.PageNumber = intPtr(pageNumber)
	d.PageCount = intPtr(pageCount)
	return d, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (r *SQLDocumentRepository) getOne(ctx context.Context, where string, args ...any) (*substitution.PlanDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM substitution_plan_documents WHERE ` + where
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("error getting plan document: %w", err)
	}
	return d, nil
}

func (r *SQLDocumentRepository) GetByDetailURL(ctx context.Context, detailURL string) (*substitution.PlanDocument, error) {
	return r.getOne(ctx, `detail_url = $1`, detailURL)
}

func (r *SQLDocumentRepository) getByPlanAndDetailURL(ctx context.Context, planUUID uuid.UUID, detailURL string) (*substitution.PlanDocument, error) {
	return r.getOne(ctx, `plan_uuid = $1 AND detail_url = $2`, planUUID.String(), detailURL)
}

// Save inserts doc or updates the stored row with the same plan and detail
// URL (falling back to the detail URL alone). Rows whose content hash is
// unchanged are left untouched and Save reports false.
func (r *SQLDocumentRepository) Save(ctx context.Context, doc *substitution.PlanDocument) (bool, error) {
	existing, err := r.getByPlanAndDetailURL(ctx, doc.PlanUUID, doc.DetailURL)
	if errors.Is(err, ErrDocumentNotFound) {
		existing, err = r.GetByDetailURL(ctx, doc.DetailURL)
	}
	switch {
	case err == nil:
		if existing.ContentHash == doc.ContentHash {
			*doc = *existing
			return false, nil
		}
		return true, r.update(ctx, existing.ID, doc)
	case errors.Is(err, ErrDocumentNotFound):
		return true, r.insert(ctx, doc)
	default:
		return false, err
	}
}

func (r *SQLDocumentRepository) insert(ctx context.Context, d *substitution.PlanDocument) error {
	now := r.now().UTC()
	d.FetchedAt, d.UpdatedAt = now, now
	query := `INSERT INTO substitution_plan_documents (plan_uuid, group_name, plan_date, title, source_date,
               source_title, detail_url, raw_html, content_hash, page_number, page_count, fetched_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, d.PlanUUID.String(), d.GroupName, d.PlanDate, d.Title, d.SourceDate,
		d.SourceTitle, d.DetailURL, d.RawHTML, d.ContentHash, nullInt(d.PageNumber), nullInt(d.PageCount),
		d.FetchedAt, d.UpdatedAt).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error inserting plan document: %w", err)
	}
	return nil
}

func (r *SQLDocumentRepository) update(ctx context.Context, id int64, d *substitution.PlanDocument) error {
	now := r.now().UTC()
	d.ID, d.UpdatedAt = id, now
	if d.FetchedAt.IsZero() {
		d.FetchedAt = now
	}
	query := `UPDATE substitution_plan_documents
               SET plan_uuid = $1, group_name = $2, plan_date = $3, title = $4, source_date = $5,
                   source_title = $6, raw_html = $7, content_hash = $8, page_number = $9, page_count = $10,
                   fetched_at = $11, updated_at = $12
               WHERE id = $13`
	res, err := r.db.ExecContext(ctx, query, d.PlanUUID.String(), d.GroupName, d.PlanDate, d.Title, d.SourceDate,
		d.SourceTitle, d.RawHTML, d.ContentHash, nullInt(d.PageNumber), nullInt(d.PageCount),
		d.FetchedAt, d.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("error updating plan document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *SQLDocumentRepository) ListByPlan(ctx context.Context, planUUID uuid.UUID) ([]*substitution.PlanDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM substitution_plan_documents
               WHERE plan_uuid = $1 ORDER BY page_number, id`
	rows, err := r.db.QueryContext(ctx, query, planUUID.String())
	if err != nil {
		return nil, fmt.Errorf("error listing plan documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*substitution.PlanDocument, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning plan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan documents: %w", err)
	}
	return docs, nil
}
