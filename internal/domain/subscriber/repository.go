package subscriber

import (
	"context"

	"school_dashboard/internal/domain/substitution"
)

// Repository defines the operations for persisting and retrieving subscribers.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByChatID(ctx context.Context, chatID int64) (*Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error
	ListActive(ctx context.Context) ([]*Subscriber, error)
	ListActiveByGrade(ctx context.Context, grade substitution.GradeKey) ([]*Subscriber, error)
	ListAll(ctx context.Context) ([]*Subscriber, error)
}
