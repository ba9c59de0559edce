package identity

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ip-inspection/internal/application"
	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

const (
	DefaultAnonymousEmail = "anonymous-dev@ip-inspection.local"
	DefaultAnonymousName  = "Anonymous (development)"
)

// Service resolves caller credentials to internal profile ids.
// Verifier and Cache are optional.
type Service struct {
	Profiles profile.Repository
	Verifier profile.Verifier
	Cache    profile.Cache
	Clock    application.Clock

	AnonymousEmail string
	AnonymousName  string
}

// Resolve returns the profile behind credential. Missing, malformed or
// unverifiable credentials, and verified subjects without a profile, fall
// back to the shared anonymous profile. An error means no identity could be
// established at all.
func (s *Service) Resolve(ctx context.Context, credential string) (profile.Identity, error) {
	if credential != "" && s.Verifier != nil {
		subject, err := s.Verifier.Verify(ctx, credential)
		switch {
		case err != nil:
			log.Printf("identity step=verify result=rejected err=%v", err)
		default:
			if id, ok := s.bySubject(ctx, subject); ok {
				return profile.Identity{UserID: id}, nil
			}
		}
	}

	id, err := s.anonymous(ctx)
	if err != nil {
		return profile.Identity{}, err
	}
	return profile.Identity{UserID: id, Anonymous: true}, nil
}

func (s *Service) bySubject(ctx context.Context, subject string) (profile.ID, bool) {
	key := "open_id:" + subject
	if id, ok := s.cacheGet(ctx, key); ok {
		return id, true
	}
	p, err := s.Profiles.FindByOpenID(ctx, subject)
	if err != nil {
		log.Printf("identity step=lookup result=error err=%v", err)
		return "", false
	}
	if p == nil {
		log.Printf("identity step=lookup result=unknown_subject")
		return "", false
	}
	s.cacheSet(ctx, key, p.ID)
	return p.ID, true
}

// anonymous finds or creates the marker profile. Concurrent creators race on
// the unique email; every caller re-reads and ends up with the stored row.
func (s *Service) anonymous(ctx context.Context) (profile.ID, error) {
	email := s.AnonymousEmail
	if email == "" {
		email = DefaultAnonymousEmail
	}
	key := "email:" + email
	if id, ok := s.cacheGet(ctx, key); ok {
		return id, nil
	}

	p, err := s.Profiles.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find anonymous profile: %w", err)
	}
	if p == nil {
		name := s.AnonymousName
		if name == "" {
			name = DefaultAnonymousName
		}
		now := application.OrSystem(s.Clock).Now()
		candidate := &profile.Profile{
			ID:        profile.ID(uuid.New().String()),
			Email:     email,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Profiles.InsertIfAbsent(ctx, candidate); err != nil {
			return "", fmt.Errorf("create anonymous profile: %w", err)
		}
		p, err = s.Profiles.FindByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("re-read anonymous profile: %w", err)
		}
		if p == nil {
			return "", errors.New("anonymous profile missing after insert")
		}
		log.Printf("identity step=anonymous result=ensured id=%s", p.ID)
	}

	s.cacheSet(ctx, key, p.ID)
	return p.ID, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) (profile.ID, bool) {
	if s.Cache == nil {
		return "", false
	}
	return s.Cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, id profile.ID) {
	if s.Cache != nil {
		s.Cache.Set(ctx, key, id)
	}
}
