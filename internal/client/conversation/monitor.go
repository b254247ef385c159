package conversation

import (
	"context"
	"time"
)

const DefaultPollInterval = 2 * time.Second

// Monitor polls the service state every interval and logs transitions. It
// returns when ctx ends.
func (s *Service) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	last := s.State()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cur := s.State()
			if cur == last {
				continue
			}
			s.logger.Info(ctx, "conversation state changed",
				"session", cur.Session,
				"previous", last.Session,
				"breaker", cur.Breaker,
				"session_id", cur.SessionID,
			)
			last = cur
		}
	}
}
