package reminders

import (
	"context"
	"log/slog"
	"time"

	"github.com/seembe/seembe/internal/domain/event"
	"github.com/seembe/seembe/internal/notifications"
	"github.com/seembe/seembe/internal/observability"
)

// EventSource is the slice of the events repo the worker needs.
type EventSource interface {
	DueReminders(ctx context.Context, now time.Time, limit int) ([]event.Event, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

// Deduper hands out a short-lived claim per reminder so several worker
// replicas deliver each reminder once.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	ClaimTTL     time.Duration
}

type Worker struct {
	cfg      Config
	events   EventSource
	dedupe   Deduper
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, events EventSource, dedupe Deduper, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 10 * time.Minute
	}

	return &Worker{
		cfg:      cfg,
		events:   events,
		dedupe:   dedupe,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("reminder worker received shutdown signal")
			return nil

		case <-ticker.C:
			w.Tick(ctx, time.Now().UTC())
		}
	}
}

// Tick runs one poll cycle. Split out from Run so tests can drive it
// without a ticker.
func (w *Worker) Tick(ctx context.Context, now time.Time) {
	var due []event.Event

	err := w.prom.ObserveDB("events.due_reminders", func() error {
		var err error
		due, err = w.events.DueReminders(ctx, now, w.cfg.BatchSize)
		return err
	})

	if err != nil {
		w.log.Error("fetch due reminders failed", "err", err)
		return
	}

	for _, e := range due {
		w.deliver(ctx, e, now)
	}
}

func (w *Worker) deliver(ctx context.Context, e event.Event, now time.Time) {
	start := time.Now()
	key := "reminder:" + e.ID

	claimed, err := w.dedupe.Claim(ctx, key, w.cfg.ClaimTTL)

	if err != nil {
		w.log.Error("reminder claim failed", "event_id", e.ID, "err", err)
		w.observe("failed", start)
		return
	}

	if !claimed {
		// another replica is on it
		w.observe("skipped", start)
		return
	}

	reminder := notifications.Reminder{
		EventID:     e.ID,
		UserID:      e.UserID,
		CelebrantID: e.CelebrantID,
		Title:       e.Title,
		Date:        e.Date,
	}

	if err := w.notifier.SendReminder(ctx, reminder); err != nil {
		w.log.Error("reminder delivery failed", "event_id", e.ID, "err", err)

		// give the claim back so the next poll can retry before the TTL
		if relErr := w.dedupe.Release(ctx, key); relErr != nil {
			w.log.Error("reminder claim release failed", "event_id", e.ID, "err", relErr)
		}

		w.observe("failed", start)
		return
	}

	err = w.prom.ObserveDB("events.mark_reminded", func() error {
		return w.events.MarkReminded(ctx, e.ID, now)
	})

	if err != nil {
		w.log.Error("mark reminded failed", "event_id", e.ID, "err", err)
		w.observe("failed", start)
		return
	}

	w.log.Info("reminder sent", "event_id", e.ID, "user_id", e.UserID)
	w.observe("sent", start)
}

func (w *Worker) observe(result string, start time.Time) {
	w.prom.ReminderResults.WithLabelValues(result).Inc()
	w.prom.ReminderDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
