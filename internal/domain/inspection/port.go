package inspection

import (
	"context"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

// Monitor port (fetches a status snapshot for one address)
type Monitor interface {
	Fetch(ctx context.Context, address string, region RegionProfile) (Snapshot, error)
}

// Scorer port (turns a snapshot into a score result)
type Scorer interface {
	Score(ctx context.Context, snapshot Snapshot) (ai.ScoreResult, error)
}

// IdentityResolver port (maps a caller credential to an internal user)
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (profile.Identity, error)
}

// RecordRepository port (persistence of inspection records)
type RecordRepository interface {
	Save(ctx context.Context, r *Record) error
	LatestByUser(ctx context.Context, userID string, limit int) ([]*Record, error)
}

// SnapshotArchive port (object storage for raw snapshots)
type SnapshotArchive interface {
	Put(ctx context.Context, key string, snapshot Snapshot) (string, error)
}

// EventPublisher port (announces stored records)
type EventPublisher interface {
	Publish(ctx context.Context, r *Record) error
}
