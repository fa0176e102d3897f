package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iammanojeet/SHecurity/module/core/domain"
	"github.com/iammanojeet/SHecurity/module/core/internal/repository/contactstore"
)

var _ contactstore.Store = (*ContactStore)(nil)

// The record lives under two fixed keys, each carrying the same
// millisecond-precision expiry.
const (
	phoneKey = "Phone"
	emailKey = "Email"
)

type ContactStore struct {
	client *redis.Client
}

func NewContactStore(client *redis.Client) *ContactStore {
	return &ContactStore{client: client}
}

func (s *ContactStore) Save(ctx context.Context, c domain.Contact, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, phoneKey, c.Phone, ttl)
	pipe.Set(ctx, emailKey, c.Email, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	return nil
}

func (s *ContactStore) Load(ctx context.Context) (*domain.Contact, error) {
	vals, err := s.client.MGet(ctx, phoneKey, emailKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}

	phone, okPhone := vals[0].(string)
	email, okEmail := vals[1].(string)

	// Redis drops each key at its own expiry; if only half the record is
	// left, evict the remainder so the record reads as absent.
	if !okPhone || !okEmail {
		if okPhone || okEmail {
			if err := s.Clear(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	return &domain.Contact{Phone: phone, Email: email}, nil
}

func (s *ContactStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, phoneKey, emailKey).Err(); err != nil {
		return fmt.Errorf("clear contact: %w", err)
	}
	return nil
}
