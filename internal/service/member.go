package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

// MemberService keeps the directory of display names used on boards.
type MemberService struct {
	store repository.Store
	now   func() time.Time
}

func NewMemberService(store repository.Store) *MemberService {
	return &MemberService{store: store, now: time.Now}
}

// Touch records the actor's current display name. Nothing is written when
// the name did not change.
func (s *MemberService) Touch(ctx context.Context, actor domain.Actor) error {
	name := strings.TrimSpace(actor.DisplayName)
	if actor.ID == "" || name == "" {
		return nil
	}

	return s.store.WithTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.GetMember(ctx, actor.ID)
		switch {
		case err == nil && existing.DisplayName == name:
			return nil
		case err != nil && !errors.Is(err, domain.ErrMemberNotFound):
			return fmt.Errorf("get member: %w", err)
		}

		return tx.UpsertMember(ctx, domain.Member{
			ID:          actor.ID,
			DisplayName: name,
			UpdatedAt:   s.now(),
		})
	})
}

func (s *MemberService) Get(ctx context.Context, id string) (domain.Member, error) {
	var m domain.Member
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		m, err = tx.GetMember(ctx, id)
		return err
	})
	return m, err
}

// DisplayName falls back to a generic label for members never seen.
func DisplayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "User " + id
}
