package subscriber

import (
	"time"

	"school_dashboard/internal/domain/substitution"
)

// Subscriber is a Telegram chat that receives substitution updates for one grade.
type Subscriber struct {
	ID        int64
	ChatID    int64
	FirstName string
	Grade     substitution.GradeKey
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
