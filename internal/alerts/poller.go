// Package alerts surfaces due tasks in the background. The poller is the
// only concurrent actor in the system: it reads the store on an interval
// and hands newly due tasks to a Notifier, never mutating task state.
package alerts

import (
	"context"
	"sync"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/repo"

	"github.com/rs/zerolog"
)

// Notifier delivers a due-task alert. Implementations must tolerate
// stale tasks (completed or deleted between poll and delivery).
type Notifier interface {
	Notify(ctx context.Context, t dom.Task) error
}

// LogNotifier writes alerts to the log. It stands in for push/websocket
// delivery, which belongs to the UI layer.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, t dom.Task) error {
	n.Log.Info().
		Int64("task_id", t.ID).
		Int64("user_id", t.UserID).
		Str("priority", string(t.Priority)).
		Time("due_at", t.DueAt).
		Str("description", t.Description).
		Msg("task due")
	return nil
}

// Poller checks for due tasks on an interval. A task already surfaced in
// the current alert batch is not re-surfaced; once it stops being due
// (completed, deleted or snoozed) it leaves the batch and may alert again
// if it comes due later.
type Poller struct {
	repo     repo.TaskRepo
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	alerted map[int64]struct{}
}

// NewPoller returns a new Poller.
func NewPoller(r repo.TaskRepo, n Notifier, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		repo:     r,
		notifier: n,
		interval: interval,
		log:      log,
		alerted:  map[int64]struct{}{},
	}
}

// Run polls until ctx is cancelled. Poll errors are logged and the loop
// keeps going; a transient store failure must not kill alerting.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.log.Info().Dur("interval", p.interval).Msg("due-task poller started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("due-task poller stopped")
			return
		case <-ticker.C:
			if err := p.Poll(ctx, time.Now()); err != nil {
				p.log.Warn().Err(err).Msg("due-task poll failed")
			}
		}
	}
}

// Poll runs one check at the given instant.
func (p *Poller) Poll(ctx context.Context, now time.Time) error {
	due, err := p.repo.ListDueAll(ctx, now)
	if err != nil {
		return err
	}

	p.mu.Lock()
	dueIDs := make(map[int64]struct{}, len(due))
	for _, t := range due {
		dueIDs[t.ID] = struct{}{}
	}
	// Tasks that left the due set were handled elsewhere; forget them so
	// they can alert again if they come due in the future.
	for id := range p.alerted {
		if _, still := dueIDs[id]; !still {
			delete(p.alerted, id)
		}
	}
	var fresh []dom.Task
	for _, t := range due {
		if _, seen := p.alerted[t.ID]; !seen {
			fresh = append(fresh, t)
		}
	}
	p.mu.Unlock()

	for _, t := range fresh {
		if err := p.notifier.Notify(ctx, t); err != nil {
			// Stale or transient: skip, the next poll retries.
			p.log.Debug().Err(err).Int64("task_id", t.ID).Msg("notify skipped")
			continue
		}
		p.mu.Lock()
		p.alerted[t.ID] = struct{}{}
		p.mu.Unlock()
	}
	return nil
}
