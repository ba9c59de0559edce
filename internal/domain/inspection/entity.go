package inspection

import (
	"encoding/json"
	"time"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
)

// Snapshot is the monitoring backend's status document for one address.
// It is passed through untouched.
type Snapshot = json.RawMessage

// RecordID identifier type
type RecordID string

// Record is one persisted inspection outcome. Never updated after insert.
type Record struct {
	ID          RecordID       `json:"id"`
	UserID      string         `json:"user_id"`
	Addresses   []string       `json:"ip_addresses"`
	Location    string         `json:"location"`
	Snapshot    Snapshot       `json:"query_info"`
	Result      ai.ScoreResult `json:"ai_result"`
	SnapshotURL string         `json:"snapshot_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
