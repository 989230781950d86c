package app

import (
	"context"
	"errors"
	"fmt"

	"school_dashboard/internal/domain/subscriber"
	"school_dashboard/internal/domain/substitution"
	idb "school_dashboard/internal/infra/database"
)

var (
	ErrAdminNotAuthorized  = errors.New("performing user is not authorized as an admin")
	ErrNotSubscribed       = errors.New("chat has no active subscription")
	ErrAlreadySubscribed   = errors.New("chat is already subscribed to this grade")
	ErrInvalidSubscription = errors.New("grade must be between 7 and 12")
)

// SubscriptionService manages which chats receive plan notifications.
type SubscriptionService struct {
	repo            subscriber.Repository
	adminTelegramID int64
}

func NewSubscriptionService(repo subscriber.Repository, adminID int64) *SubscriptionService {
	return &SubscriptionService{repo: repo, adminTelegramID: adminID}
}

// IsAdmin reports whether chatID belongs to the configured admin.
func (s *SubscriptionService) IsAdmin(chatID int64) bool {
	return s.adminTelegramID != 0 && chatID == s.adminTelegramID
}

// Subscribe registers chatID for grade, reactivating or moving an existing
// subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, chatID int64, firstName string, grade substitution.GradeKey) (*subscriber.Subscriber, error) {
	if !grade.Valid() {
		return nil, ErrInvalidSubscription
	}

	existing, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil && !errors.Is(err, idb.ErrSubscriberNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	if existing == nil {
		sub := &subscriber.Subscriber{ChatID: chatID, FirstName: firstName, Grade: grade, IsActive: true}
		if err := s.repo.Create(ctx, sub); err != nil {
			if errors.Is(err, idb.ErrDuplicateChatID) {
				return nil, ErrAlreadySubscribed
			}
			return nil, fmt.Errorf("failed to create subscription: %w", err)
		}
		return sub, nil
	}

	if existing.IsActive && existing.Grade == grade {
		return existing, ErrAlreadySubscribed
	}
	existing.Grade = grade
	existing.IsActive = true
	if firstName != "" {
		existing.FirstName = firstName
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return existing, nil
}

// Unsubscribe deactivates the subscription of chatID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, chatID int64) (*subscriber.Subscriber, error) {
	sub, err := s.Subscription(ctx, chatID)
	if err != nil {
		return nil, err
	}
	sub.IsActive = false
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return sub, nil
}

// Subscription returns the active subscription of chatID.
func (s *SubscriptionService) Subscription(ctx context.Context, chatID int64) (*subscriber.Subscriber, error) {
	sub, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, idb.ErrSubscriberNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if !sub.IsActive {
		return nil, ErrNotSubscribed
	}
	return sub, nil
}

// ListSubscribers returns every subscriber, active or not. Admin only.
func (s *SubscriptionService) ListSubscribers(ctx context.Context, performingAdminID int64) ([]*subscriber.Subscriber, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}
