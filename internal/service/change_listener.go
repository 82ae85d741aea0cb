package service

import (
	"context"
	"log"

	"github.com/mansoorceksport/platepal/internal/domain"
)

// EventSubscriber delivers data-changed events until ctx ends
type EventSubscriber interface {
	Subscribe(ctx context.Context, handle func(context.Context, domain.DataChangedEvent)) error
}

// ChangeListener drops cached progress whenever any replica reports that a
// user's meals or profile changed.
type ChangeListener struct {
	subscriber EventSubscriber
	progress   *ProgressService
}

func NewChangeListener(subscriber EventSubscriber, progress *ProgressService) *ChangeListener {
	return &ChangeListener{subscriber: subscriber, progress: progress}
}

// Run blocks until ctx is cancelled or the subscription fails
func (l *ChangeListener) Run(ctx context.Context) error {
	log.Println("[Events] Listening for data-changed events")
	return l.subscriber.Subscribe(ctx, l.Handle)
}

// Handle invalidates the progress cache for the event's user
func (l *ChangeListener) Handle(ctx context.Context, event domain.DataChangedEvent) {
	if event.UserID == "" {
		return
	}
	if err := l.progress.Invalidate(ctx, event.UserID); err != nil {
		log.Printf("[Events] Failed to invalidate progress for user %s: %v", event.UserID, err)
	}
}
