package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// Ceremony is the in-flight state of a passkey registration or login.
type Ceremony struct {
	Data     webauthn.SessionData `json:"data"`
	UserID   string               `json:"uid,omitempty"`
	Redirect string               `json:"redirect,omitempty"`
}

// CeremonyStore keeps webauthn ceremony state between begin and finish.
type CeremonyStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewCeremonyStore(rdb redis.UniversalClient, ttl time.Duration) *CeremonyStore {
	return &CeremonyStore{rdb: rdb, ttl: ttl}
}

type Kind string

const (
	Registration Kind = "reg"
	Login        Kind = "auth"
)

func ceremonyKey(k Kind, id string) string { return fmt.Sprintf("rk:webauthn:%s:%s", k, id) }

func (s *CeremonyStore) Save(ctx context.Context, k Kind, id string, c Ceremony) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ceremonyKey(k, id), b, s.ttl).Err()
}

// Take loads and deletes the ceremony so it cannot be replayed.
func (s *CeremonyStore) Take(ctx context.Context, k Kind, id string) (*Ceremony, error) {
	b, err := s.rdb.GetDel(ctx, ceremonyKey(k, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var c Ceremony
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
