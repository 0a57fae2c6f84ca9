package service

import (
	"context"
	"errors"
	"fmt"
	"recipe-service/internal/repository"
	"strconv"
)

const (
	MinFormCount     = 3
	MaxFormCount     = 10
	DefaultFormCount = 3

	MsgCannotIncrease = "これ以上フォームを増やせません。"
	MsgCannotDecrease = "これ以上フォームを減らせません。"
)

// CounterStore is the key/value backend for form counts. Get must return
// repository.ErrCacheMiss for an absent key.
type CounterStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// FormCountService tracks how many ingredient rows each user wants to see.
type FormCountService struct {
	store CounterStore
}

func NewFormCountService(store CounterStore) *FormCountService {
	return &FormCountService{store: store}
}

// Adjustment is the outcome of AdjustCount. Message is empty unless the
// requested count fell outside the bounds.
type Adjustment struct {
	Count   int
	Message string
}

func formCountKey(userID int) string {
	return fmt.Sprintf("form_count_%d", userID)
}

func InFormCountRange(n int) bool {
	return MinFormCount <= n && n <= MaxFormCount
}

// GetCount returns the stored count, initialising it to the default on first use.
func (s *FormCountService) GetCount(ctx context.Context, userID int) (int, error) {
	raw, err := s.store.Get(ctx, formCountKey(userID))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Error().Err(err).Msgf("Error getting form count for user %d", userID)
			return 0, err
		}
		return DefaultFormCount, s.SetCount(ctx, userID, DefaultFormCount)
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn().Msgf("Unreadable form count %q for user %d, resetting", raw, userID)
		return DefaultFormCount, s.SetCount(ctx, userID, DefaultFormCount)
	}

	return count, nil
}

// SetCount overwrites the stored count without any bounds check.
func (s *FormCountService) SetCount(ctx context.Context, userID int, count int) error {
	err := s.store.Set(ctx, formCountKey(userID), strconv.Itoa(count))
	if err != nil {
		logger.Error().Err(err).Msgf("Error setting form count for user %d", userID)
		return err
	}
	return nil
}

// ResetCount puts the user back on the default count.
func (s *FormCountService) ResetCount(ctx context.Context, userID int) error {
	return s.SetCount(ctx, userID, DefaultFormCount)
}

// AdjustCount applies delta to the stored count. Going above the maximum
// pins the count at the maximum; going below the minimum resets it to the
// default. Both cases come back with a message for the user.
func (s *FormCountService) AdjustCount(ctx context.Context, userID int, delta int) (Adjustment, error) {
	current, err := s.GetCount(ctx, userID)
	if err != nil {
		return Adjustment{}, err
	}

	next := current + delta
	var result Adjustment
	switch {
	case InFormCountRange(next):
		result = Adjustment{Count: next}
	case next > MaxFormCount:
		result = Adjustment{Count: MaxFormCount, Message: MsgCannotIncrease}
	case next < MinFormCount:
		result = Adjustment{Count: DefaultFormCount, Message: MsgCannotDecrease}
	default:
		result = Adjustment{Count: DefaultFormCount}
	}

	if err := s.SetCount(ctx, userID, result.Count); err != nil {
		return Adjustment{}, err
	}
	return result, nil
}
