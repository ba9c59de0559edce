package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	"github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
	"github.com/bryanwahyu/ip-inspection/internal/infra/ai/prompt"
)

// Service scores monitoring snapshots through a completion provider.
type Service struct {
	client ai.Completer
}

func NewService(client ai.Completer) *Service {
	return &Service{client: client}
}

// Score sends the snapshot to the provider and normalizes the reply.
// Only provider failures are returned; unstructured replies become the fallback result.
func (s *Service) Score(ctx context.Context, snapshot inspection.Snapshot) (ai.ScoreResult, error) {
	text, err := s.client.Complete(ctx, prompt.InspectionMessages(snapshot))
	if err != nil {
		return ai.ScoreResult{}, fmt.Errorf("%w: %w", inspection.ErrScoringUnavailable, err)
	}

	reply := ai.ParseReply(text)
	if reply.Kind == ai.Unstructured {
		log.Printf("scoring reply=unstructured chars=%d", len(text))
	}
	return reply.Normalize(), nil
}
