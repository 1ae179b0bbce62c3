package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/metrics"
)

// Service runs the full message flow: snapshot the ledger, route the
// utterance, then commit whatever mutation the router asked for. Persistence
// failures leave the ledger untouched; the response reports the failure and
// the undo slot is only set once the append actually lands.
type Service struct {
	store   *ledger.Store
	router  *Router
	metrics *metrics.Metrics
	logger  *zap.Logger
	clock   func() time.Time
}

// NewService wires a chat service over an open store.
func NewService(store *ledger.Store, router *Router, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		store:   store,
		router:  router,
		metrics: m,
		logger:  logger,
		clock:   time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// HandleMessage processes one chat message end to end and returns the
// response the channel should render.
func (s *Service) HandleMessage(ctx context.Context, text string) (Response, error) {
	started := s.clock()

	vocab, err := s.store.LoadVocabularies()
	if err != nil {
		return Response{}, err
	}
	snapshot, err := s.store.List()
	if err != nil {
		return Response{}, err
	}

	resp := s.router.Route(text, snapshot, vocab, s.clock())
	s.metrics.RecordMessage(string(resp.Kind))

	switch resp.Kind {
	case KindAdded:
		s.metrics.RecordParse(true)
		if err := s.store.Append(resp.Mutation.Append); err != nil {
			s.logger.Error("failed to append transaction", zap.Error(err))
			return Response{}, err
		}
		s.router.ConfirmAppend(resp.Mutation.Append)
		s.metrics.RecordAdd()
	case KindUndone:
		if err := s.store.Remove(resp.Mutation.RemoveID); err != nil {
			s.logger.Error("failed to remove transaction",
				zap.String("id", resp.Mutation.RemoveID),
				zap.Error(err),
			)
			return Response{}, err
		}
		s.router.ConfirmUndo()
		s.metrics.RecordUndo()
	case KindNeedsInput:
		s.metrics.RecordParse(false)
	case KindNotUnderstood:
		s.metrics.RecordNotUnderstood()
	}

	s.metrics.RecordResponseTime(time.Since(started))
	return resp, nil
}
