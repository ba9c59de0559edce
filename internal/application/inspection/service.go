package inspection

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ip-inspection/internal/application"
	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

const defaultPersistTimeout = 10 * time.Second

// Service orchestrates one inspection: resolve region, fetch the snapshot,
// score it, then record the outcome on a best-effort basis.
// Service is stateless between calls and safe for concurrent use.
//
// Scorer nil means the AI service is not configured. Identity or Records nil
// disables persistence; Archive and Events are optional.
type Service struct {
	Regions  domain.Regions
	Monitor  domain.Monitor
	Scorer   domain.Scorer
	Identity domain.IdentityResolver
	Records  domain.RecordRepository
	Archive  domain.SnapshotArchive
	Events   domain.EventPublisher
	Clock    application.Clock

	PersistTimeout time.Duration
	// OnPersistFailure is called whenever an outcome could not be recorded.
	OnPersistFailure func(error)
}

// InspectCommand is the inbound request.
type InspectCommand struct {
	Addresses  []string
	Credential string
}

// InspectResult is the success response body.
type InspectResult struct {
	Success    bool            `json:"success"`
	Location   string          `json:"location"`
	IP         string          `json:"ip"`
	NagiosData domain.Snapshot `json:"nagiosData"`
	AIResult   ai.ScoreResult  `json:"aiResult"`
}

// Inspect runs the pipeline for the first submitted address only. Further
// addresses are kept on the stored record but are not inspected.
func (s *Service) Inspect(ctx context.Context, cmd InspectCommand) (InspectResult, error) {
	if len(cmd.Addresses) == 0 {
		return InspectResult{}, domain.ErrInvalidInput
	}
	if s.Scorer == nil {
		return InspectResult{}, domain.ErrScoringNotConfigured
	}

	address := strings.TrimSpace(cmd.Addresses[0])
	if len(cmd.Addresses) > 1 {
		log.Printf("inspect step=validated ip=%s ignored=%d", address, len(cmd.Addresses)-1)
	}

	region := s.Regions.Resolve(address)
	log.Printf("inspect step=location_resolved ip=%s location=%s", address, region.Label)

	snapshot, err := s.Monitor.Fetch(ctx, address, region)
	if err != nil {
		log.Printf("inspect step=monitoring_failed ip=%s err=%v", address, err)
		return InspectResult{}, err
	}
	log.Printf("inspect step=monitoring_fetched ip=%s bytes=%d", address, len(snapshot))

	result, err := s.Scorer.Score(ctx, snapshot)
	if err != nil {
		log.Printf("inspect step=scoring_failed ip=%s err=%v", address, err)
		return InspectResult{}, err
	}
	log.Printf("inspect step=scored ip=%s score=%v", address, result.ScoreValue())

	res := InspectResult{
		Success:    true,
		Location:   region.Label,
		IP:         address,
		NagiosData: snapshot,
		AIResult:   result,
	}
	s.persist(ctx, cmd, res)
	return res, nil
}

// persist records the outcome. Failures are logged and reported through
// OnPersistFailure, never returned. It runs detached from the request's
// cancellation so a client hang-up does not drop the record.
func (s *Service) persist(ctx context.Context, cmd InspectCommand, res InspectResult) {
	if s.Identity == nil || s.Records == nil {
		return
	}
	timeout := s.PersistTimeout
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	ident, err := s.Identity.Resolve(ctx, cmd.Credential)
	if err != nil {
		s.persistFailed(res.IP, fmt.Errorf("resolve identity: %w", err))
		return
	}

	rec := &domain.Record{
		ID:        domain.RecordID(uuid.New().String()),
		UserID:    string(ident.UserID),
		Addresses: append([]string(nil), cmd.Addresses...),
		Location:  res.Location,
		Snapshot:  res.NagiosData,
		Result:    res.AIResult,
		CreatedAt: application.OrSystem(s.Clock).Now(),
	}

	if s.Archive != nil {
		key := fmt.Sprintf("snapshots/%s/%s.json", rec.UserID, rec.ID)
		if url, err := s.Archive.Put(ctx, key, rec.Snapshot); err != nil {
			log.Printf("inspect step=archive_failed ip=%s record=%s err=%v", res.IP, rec.ID, err)
		} else {
			rec.SnapshotURL = url
		}
	}

	if err := s.Records.Save(ctx, rec); err != nil {
		s.persistFailed(res.IP, fmt.Errorf("save record: %w", err))
		return
	}
	log.Printf("inspect step=persisted ip=%s record=%s user=%s anonymous=%t", res.IP, rec.ID, rec.UserID, ident.Anonymous)

	if s.Events != nil {
		if err := s.Events.Publish(ctx, rec); err != nil {
			log.Printf("inspect step=publish_failed record=%s err=%v", rec.ID, err)
		}
	}
}

func (s *Service) persistFailed(ip string, err error) {
	log.Printf("inspect step=persist_failed ip=%s err=%v", ip, err)
	if s.OnPersistFailure != nil {
		s.OnPersistFailure(err)
	}
}

// ListRecords lists the latest stored inspections of the caller behind credential.
func (s *Service) ListRecords(ctx context.Context, credential string, limit int) ([]*domain.Record, error) {
	if s.Identity == nil || s.Records == nil {
		return []*domain.Record{}, nil
	}
	ident, err := s.Identity.Resolve(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	list, err := s.Records.LatestByUser(ctx, string(ident.UserID), limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return list, nil
}
