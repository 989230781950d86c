package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"school_dashboard/internal/domain/subscriber"
	"school_dashboard/internal/domain/substitution"
)

var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrDuplicateChatID    = errors.New("subscriber with this chat ID already exists")
)

const subscriberColumns = `id, chat_id, first_name, grade, is_active, created_at, updated_at`

type SQLSubscriberRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLSubscriberRepository(db *sql.DB) *SQLSubscriberRepository {
	return &SQLSubscriberRepository{db: db, now: time.Now}
}

func scanSubscriber(row rowScanner) (*subscriber.Subscriber, error) {
	s := &subscriber.Subscriber{}
	var grade int
	if err := row.Scan(&s.ID, &s.ChatID, &s.FirstName, &grade, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Grade = substitution.GradeKey(grade)
	return s, nil
}

func (r *SQLSubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	now := r.now().UTC()
	query := `INSERT INTO subscribers (chat_id, first_name, grade, is_active, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, s.ChatID, s.FirstName, int(s.Grade), s.IsActive, now).Scan(&s.ID)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique") {
			return ErrDuplicateChatID
		}
		return fmt.Errorf("error creating subscriber: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (r *SQLSubscriberRepository) GetByChatID(ctx context.Context, chatID int64) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE chat_id = $1`
	s, err := scanSubscriber(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by chat ID: %w", err)
	}
	return s, nil
}

func (r *SQLSubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	now := r.now().UTC()
	query := `UPDATE subscribers
               SET first_name = $1, grade = $2, is_active = $3, updated_at = $4
               WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, s.FirstName, int(s.Grade), s.IsActive, now, s.ID)
	if err != nil {
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	if n == 0 {
		return ErrSubscriberNotFound
	}
	s.UpdatedAt = now
	return nil
}

func (r *SQLSubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	return r.list(ctx, `WHERE is_active = TRUE ORDER BY grade, first_name`)
}

func (r *SQLSubscriberRepository) ListActiveByGrade(ctx context.Context, grade substitution.GradeKey) ([]*subscriber.Subscriber, error) {
	return r.list(ctx, `WHERE is_active = TRUE AND grade = $1 ORDER BY id`, int(grade))
}

func (r *SQLSubscriberRepository) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	return r.list(ctx, `ORDER BY id`)
}

func (r *SQLSubscriberRepository) list(ctx context.Context, clause string, args ...any) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ` + clause
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return subs, nil
}
