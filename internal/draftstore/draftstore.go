// Package draftstore persists in-progress booking drafts and the post-login
// redirect state. Records are keyed per client session (user ID or the
// anonymous session key) and overwritten last-write-wins; there is no TTL.
package draftstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storehouse-app/storehouse/internal/domain"
)

type Store interface {
	SetDraft(ctx context.Context, session string, draft *domain.BookingDraft) error
	GetDraft(ctx context.Context, session string, propertyID uuid.UUID) (*domain.BookingDraft, error)
	GetPendingDraft(ctx context.Context, session string) (*domain.BookingDraft, error)
	PromoteToConfirmed(ctx context.Context, session string, booking *domain.Booking) error
	GetConfirmed(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	StashRedirect(ctx context.Context, session string, state *domain.RedirectState) error
	PopRedirect(ctx context.Context, session string) (*domain.RedirectState, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SetDraft writes the full draft under the property-scoped key and the
// session's pending key in one round trip. Each value is a single SET, so a
// concurrent reader never observes a partial draft.
func (s *RedisStore) SetDraft(ctx context.Context, session string, draft *domain.BookingDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftKey(session, draft.PropertyID), payload, 0)
		pipe.Set(ctx, pendingKey(session), payload, 0)
		return nil
	})
	return err
}

func (s *RedisStore) GetDraft(ctx context.Context, session string, propertyID uuid.UUID) (*domain.BookingDraft, error) {
	return s.getDraft(ctx, draftKey(session, propertyID))
}

func (s *RedisStore) GetPendingDraft(ctx context.Context, session string) (*domain.BookingDraft, error) {
	return s.getDraft(ctx, pendingKey(session))
}

// getDraft treats a missing or malformed record as "no draft".
func (s *RedisStore) getDraft(ctx context.Context, key string) (*domain.BookingDraft, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var draft domain.BookingDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, nil
	}
	return &draft, nil
}

// PromoteToConfirmed supersedes the draft with the server-acknowledged
// booking: the confirmed record is written and both draft keys are removed.
func (s *RedisStore) PromoteToConfirmed(ctx context.Context, session string, booking *domain.Booking) error {
	payload, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, confirmedKey(booking.ID), payload, 0)
		pipe.Del(ctx, pendingKey(session), draftKey(session, booking.PropertyID))
		return nil
	})
	return err
}

func (s *RedisStore) GetConfirmed(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	data, err := s.client.Get(ctx, confirmedKey(bookingID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var booking domain.Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		return nil, nil
	}
	return &booking, nil
}

func (s *RedisStore) StashRedirect(ctx context.Context, session string, state *domain.RedirectState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redirectKey(session), payload, 0).Err()
}

// PopRedirect returns the stashed redirect state and removes it. Missing or
// malformed state comes back nil.
func (s *RedisStore) PopRedirect(ctx context.Context, session string) (*domain.RedirectState, error) {
	data, err := s.client.GetDel(ctx, redirectKey(session)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var state domain.RedirectState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, nil
	}
	return &state, nil
}

func draftKey(session string, propertyID uuid.UUID) string {
	return fmt.Sprintf("draft:%s:%s", session, propertyID)
}

func pendingKey(session string) string {
	return fmt.Sprintf("draft:%s:pending", session)
}

func confirmedKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("confirmed:%s", bookingID)
}

func redirectKey(session string) string {
	return fmt.Sprintf("redirect:%s", session)
}

var _ Store = (*RedisStore)(nil)
