package profile

import (
	"context"
	"errors"
)

// ErrInvalidCredential is returned by verifiers for malformed, expired or forged credentials.
var ErrInvalidCredential = errors.New("invalid credential")

// Repository port for profiles. Find methods return (nil, nil) when absent.
type Repository interface {
	FindByOpenID(ctx context.Context, openID string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	// InsertIfAbsent inserts p, doing nothing when a unique key already exists.
	InsertIfAbsent(ctx context.Context, p *Profile) error
}

// Verifier port: checks a caller credential and returns the provider subject.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// Cache port for subject → profile id lookups. Misses and failures both report false.
type Cache interface {
	Get(ctx context.Context, key string) (ID, bool)
	Set(ctx context.Context, key string, id ID)
}
