package remind

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/stats"
)

// lastSentKey is the kv slot recording "<day> <HH:MM>" of the last
// delivered digest.
const lastSentKey = "remind.last_sent"

// Bookkeeper persists daemon state between runs. *store.DB satisfies it.
type Bookkeeper interface {
	GetKV(key string) (string, error)
	SetKV(key, value string) error
}

// Daemon fires digests at configured times until its context ends.
type Daemon struct {
	svc       *stats.Service
	books     Bookkeeper
	sched     *Scheduler
	notifiers []Notifier
	now       func() time.Time
}

func NewDaemon(svc *stats.Service, books Bookkeeper, loc *time.Location) *Daemon {
	return &Daemon{
		svc:   svc,
		books: books,
		sched: NewScheduler(loc),
		now:   time.Now,
	}
}

// Use appends a notifier to the delivery chain.
func (d *Daemon) Use(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Schedule registers a daily tick for each "HH:MM" entry.
func (d *Daemon) Schedule(times []string) error {
	if len(times) == 0 {
		return fmt.Errorf("no reminder times configured")
	}
	for _, at := range times {
		at := at
		if _, err := d.sched.ScheduleDaily(at, func() { d.tick(at) }); err != nil {
			return fmt.Errorf("scheduling %q: %w", at, err)
		}
	}
	return nil
}

// Run starts the cron loop and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if len(d.notifiers) == 0 {
		return fmt.Errorf("no notifiers configured")
	}
	d.sched.Start()
	log.Printf("[info] remind daemon running (%d notifier(s))", len(d.notifiers))
	<-ctx.Done()
	d.sched.Stop()
	log.Printf("[info] remind daemon stopped")
	return nil
}

// LastSent returns the "<day> <HH:MM>" marker of the newest delivery,
// or "" when nothing has been sent yet.
func (d *Daemon) LastSent() string {
	v, err := d.books.GetKV(lastSentKey)
	if err != nil {
		return ""
	}
	return v
}

// tick runs one scheduled slot: skip if this day+slot already fired,
// otherwise deliver and record the marker.
func (d *Daemon) tick(slot string) {
	day := cal.FromTime(d.now())
	stamp := day.String() + " " + slot

	last, err := d.books.GetKV(lastSentKey)
	if err != nil {
		log.Printf("[warn] reading last-sent marker: %v", err)
	}
	if last == stamp {
		return
	}

	sent, err := d.Deliver(day)
	if err != nil {
		log.Printf("[error] delivering digest: %v", err)
	}
	if sent {
		if err := d.books.SetKV(lastSentKey, stamp); err != nil {
			log.Printf("[warn] recording last-sent marker: %v", err)
		}
	}
}

// Deliver builds the digest for day and pushes it through every
// notifier. Returns whether anything went out; an all-done day sends
// nothing.
func (d *Daemon) Deliver(day cal.Day) (bool, error) {
	board, err := d.svc.TodayBoard(day)
	if err != nil {
		return false, fmt.Errorf("loading today board: %w", err)
	}

	digest := BuildDigest(board, day)
	if digest.Empty() {
		log.Printf("[info] nothing waiting on %s, skipping digest", day)
		return false, nil
	}

	delivered := false
	var firstErr error
	for _, n := range d.notifiers {
		if err := n.Notify(digest); err != nil {
			log.Printf("[error] %s notifier: %v", n.Name(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s notifier: %w", n.Name(), err)
			}
			continue
		}
		delivered = true
	}
	return delivered, firstErr
}
