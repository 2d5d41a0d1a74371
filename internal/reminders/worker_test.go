package reminders_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/seembe/seembe/internal/domain/event"
	"github.com/seembe/seembe/internal/notifications"
	"github.com/seembe/seembe/internal/observability"
	"github.com/seembe/seembe/internal/reminders"
)

type fakeEventSource struct {
	mu       sync.Mutex
	due      []event.Event
	reminded map[string]time.Time
	dueErr   error
}

func (f *fakeEventSource) DueReminders(ctx context.Context, now time.Time, limit int) ([]event.Event, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]event.Event, 0, limit)
	for _, e := range f.due {
		if _, ok := f.reminded[e.ID]; !ok {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEventSource) MarkReminded(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reminded == nil {
		f.reminded = make(map[string]time.Time)
	}
	f.reminded[id] = at
	return nil
}

type fakeDeduper struct {
	mu     sync.Mutex
	claims map[string]bool
}

func (f *fakeDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claims == nil {
		f.claims = make(map[string]bool)
	}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func (f *fakeDeduper) Release(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.claims, key)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifications.Reminder
	fail bool
}

func (f *fakeNotifier) SendReminder(ctx context.Context, r notifications.Reminder) error {
	if f.fail {
		return errors.New("provider down")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, r)
	return nil
}

func testWorker(events *fakeEventSource, dedupe *fakeDeduper, notifier *fakeNotifier) *reminders.Worker {
	prom := observability.NewProm(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return reminders.New(reminders.Config{
		PollInterval: time.Minute,
		BatchSize:    10,
		ClaimTTL:     time.Minute,
	}, events, dedupe, notifier, prom, log)
}

func dueEvent(id string) event.Event {
	return event.Event{
		ID:          id,
		UserID:      "user-a",
		CelebrantID: "cel-1",
		Title:       "Birthday",
		Date:        time.Now().UTC().Add(24 * time.Hour),
		Status:      event.StatusUpcoming,
	}
}

func TestTickSendsAndMarksReminded(t *testing.T) {
	events := &fakeEventSource{due: []event.Event{dueEvent("evt-1"), dueEvent("evt-2")}}
	dedupe := &fakeDeduper{}
	notifier := &fakeNotifier{}

	w := testWorker(events, dedupe, notifier)

	w.Tick(context.Background(), time.Now().UTC())

	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d reminders, want 2", len(notifier.sent))
	}

	if len(events.reminded) != 2 {
		t.Fatalf("marked %d events reminded, want 2", len(events.reminded))
	}
}

func TestTickDeliversOnceUnderDedupe(t *testing.T) {
	events := &fakeEventSource{due: []event.Event{dueEvent("evt-1")}}
	dedupe := &fakeDeduper{}
	notifier := &fakeNotifier{}

	w := testWorker(events, dedupe, notifier)

	// a second replica already claimed the reminder
	if _, err := dedupe.Claim(context.Background(), "reminder:evt-1", time.Minute); err != nil {
		t.Fatalf("pre-claim failed: %v", err)
	}

	w.Tick(context.Background(), time.Now().UTC())

	if len(notifier.sent) != 0 {
		t.Fatalf("sent %d reminders, want 0 (claim held elsewhere)", len(notifier.sent))
	}

	if len(events.reminded) != 0 {
		t.Fatalf("event marked reminded despite a held claim")
	}
}

func TestTickReleasesClaimOnDeliveryFailure(t *testing.T) {
	events := &fakeEventSource{due: []event.Event{dueEvent("evt-1")}}
	dedupe := &fakeDeduper{}
	notifier := &fakeNotifier{fail: true}

	w := testWorker(events, dedupe, notifier)

	w.Tick(context.Background(), time.Now().UTC())

	if len(events.reminded) != 0 {
		t.Fatalf("failed delivery must not mark the event reminded")
	}

	if dedupe.claims["reminder:evt-1"] {
		t.Fatalf("claim should be released after a failed delivery")
	}

	// next tick retries and succeeds
	notifier.fail = false
	w.Tick(context.Background(), time.Now().UTC())

	if len(notifier.sent) != 1 || len(events.reminded) != 1 {
		t.Fatalf("retry after failure did not deliver: sent=%d reminded=%d", len(notifier.sent), len(events.reminded))
	}
}

func TestTickSurvivesSourceError(t *testing.T) {
	events := &fakeEventSource{dueErr: errors.New("db down")}
	w := testWorker(events, &fakeDeduper{}, &fakeNotifier{})

	// must not panic; nothing delivered
	w.Tick(context.Background(), time.Now().UTC())
}
