package application

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevArqf/ChronoCord/domain/entities"
)

// Session owns one live poll: its vote ledger, a read-only copy of the
// durable record and the display target. Vote submissions are applied and
// rendered one at a time; display refreshes run on a serial worker so a slow
// platform edit never reorders or loses a displayed tally.
type Session struct {
	// ID identifies this in-process session, not the poll; the poll's public
	// identifier is Record.UID.
	ID      string
	Record  entities.PollRecord
	Display DisplayConfig

	logger *zap.Logger
	target DisplayTarget

	mu     sync.Mutex
	ledger *Ledger
	ended  bool

	notify chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession builds a live session with a fresh ledger and starts its refresh
// worker. The record already carries the delivered message location.
func NewSession(record entities.PollRecord, display DisplayConfig, target DisplayTarget, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:      uuid.NewString(),
		Record:  record,
		Display: display,
		logger:  logger,
		target:  target,
		ledger:  NewLedger(len(record.Times)),
		notify:  make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.run(ctx)

	return s
}

// HandleVote parses raw selection tokens, applies them to the ledger and
// schedules a display refresh. Unparseable or out-of-range tokens are dropped
// and the remaining selections still apply; a submission over the vote cap is
// rejected as a whole with the voter's previous state intact. Either way the
// display is refreshed. After End it is a no-op returning ErrSessionEnded.
func (s *Session) HandleVote(voterID string, rawSelection []string) error {
	indices := parseSelection(rawSelection, len(s.Record.Times))

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	err := s.ledger.Submit(voterID, indices, s.Record.MaxVotes)
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("vote submission dropped",
			zap.String("uid", s.Record.UID),
			zap.String("voter_id", voterID),
			zap.Error(err))
	}

	s.scheduleRefresh()
	return nil
}

// Tally computes the current tally. The read is serialized against vote
// submissions, so it never observes a half-applied replacement.
func (s *Session) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTally(s.ledger, s.Record.Times)
}

// End marks the session inactive, stops the refresh worker (cancelling any
// in-flight refresh) and removes the live display. Idempotent.
func (s *Session) End(ctx context.Context) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	s.cancel()
	<-s.done

	if err := s.target.Remove(ctx); err != nil {
		s.logger.Warn("poll display removal failed",
			zap.String("uid", s.Record.UID),
			zap.Error(err))
	}
}

// Shutdown stops accepting votes and halts the refresh worker without
// touching the live message. Used on process shutdown, where the poll should
// stay visible even though its ledger is about to be lost.
func (s *Session) Shutdown() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
}

// Ended reports whether End has been called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			s.refresh(ctx)
		}
	}
}

func (s *Session) refresh(ctx context.Context) {
	t := s.Tally()
	if err := s.target.Update(ctx, t); err != nil && ctx.Err() == nil {
		// post-creation delivery failures are non-fatal
		s.logger.Warn("poll display refresh failed",
			zap.String("uid", s.Record.UID),
			zap.Error(err))
	}
}

// scheduleRefresh coalesces with a pending request; the worker always renders
// the latest ledger state, so collapsing bursts cannot publish a stale tally.
func (s *Session) scheduleRefresh() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func parseSelection(rawSelection []string, optionCount int) []int {
	var indices []int
	for _, raw := range rawSelection {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= optionCount {
			continue
		}
		indices = append(indices, idx)
	}
	return indices
}
