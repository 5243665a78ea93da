package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/gtfsrt"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/transit"
)

type Fetcher interface {
	Fetch(ctx context.Context, feed feeds.Feed) ([]byte, error)
}

// Listener polls every feed once per period and emits a Snapshot for each
// successful fetch. A feed never has more than one fetch in flight; if the
// previous one is still running when the tick fires, the feed sits that tick out.
type Listener struct {
	Fetcher Fetcher
	Feeds   []feeds.Feed
	Period  time.Duration
	Metrics *metrics.Collector

	inFlight map[string]*atomic.Bool
	tasks    sync.WaitGroup
}

func NewListener(fetcher Fetcher, feedList []feeds.Feed, period time.Duration) *Listener {
	listener := &Listener{
		Fetcher:  fetcher,
		Feeds:    feedList,
		Period:   period,
		inFlight: make(map[string]*atomic.Bool, len(feedList)),
	}

	for _, feed := range feedList {
		listener.inFlight[feed.Name] = &atomic.Bool{}
	}

	return listener
}

// Capacity is the size of the snapshot channel: two per feed plus one.
func (l *Listener) Capacity() int {
	return len(l.Feeds)*2 + 1
}

// Start runs the poll loop until ctx is cancelled. The returned channel is
// closed once the loop and every outstanding fetch have finished.
func (l *Listener) Start(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, l.Capacity())

	go func() {
		defer close(out)
		defer l.tasks.Wait()

		log.Info().Int("feeds", len(l.Feeds)).Dur("period", l.Period).Msg("Starting feed listener")

		ticker := time.NewTicker(l.Period)
		defer ticker.Stop()

		for {
			l.Tick(ctx, out)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

// Tick fans out one fetch per idle feed and waits at most one period for them.
// Fetches still running after that are left to finish in the background.
func (l *Listener) Tick(ctx context.Context, out chan<- Snapshot) {
	log.Debug().Int("feeds", len(l.Feeds)).Msg("Woke up to poll feeds")

	p := pool.New()
	for _, feed := range l.Feeds {
		busy := l.inFlightFlag(feed.Name)
		if !busy.CompareAndSwap(false, true) {
			log.Warn().Str("feed", feed.Name).Msg("Previous fetch still running, skipping tick")
			l.Metrics.TickSkipped(feed.Name)
			continue
		}

		feed := feed
		l.tasks.Add(1)
		p.Go(func() {
			defer l.tasks.Done()
			defer busy.Store(false)

			l.poll(ctx, feed, out)
		})
	}

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	deadline := time.NewTimer(l.Period)
	defer deadline.Stop()

	select {
	case <-done:
	case <-deadline.C:
		log.Warn().Dur("period", l.Period).Msg("Listener loop didn't complete in time")
		l.Metrics.TickOverrun()
	case <-ctx.Done():
	}
}

// inFlightFlag returns the feed's busy flag, creating it for feeds added after
// construction. Only the tick loop touches the map.
func (l *Listener) inFlightFlag(name string) *atomic.Bool {
	if l.inFlight == nil {
		l.inFlight = map[string]*atomic.Bool{}
	}

	busy, ok := l.inFlight[name]
	if !ok {
		busy = &atomic.Bool{}
		l.inFlight[name] = busy
	}
	return busy
}

func (l *Listener) poll(ctx context.Context, feed feeds.Feed, out chan<- Snapshot) {
	requested := time.Now()

	body, err := l.Fetcher.Fetch(ctx, feed)
	if err != nil {
		log.Warn().Err(err).Str("feed", feed.Name).Msg("Fetch failure")
		l.Metrics.ObserveFetch(feed.Name, failureLabel(err), time.Since(requested), 0)
		return
	}
	responded := time.Now()

	batch, err := gtfsrt.Decode(body)
	if err != nil {
		log.Error().Err(err).Str("feed", feed.Name).Int("length", len(body)).Msg("Parse failure")
		l.Metrics.ObserveFetch(feed.Name, "decode", time.Since(requested), len(body))
		return
	}

	snapshot := NewSnapshot(feed, body, batch, requested, responded)
	counts := snapshot.Counts()

	l.Metrics.ObserveFetch(feed.Name, "ok", time.Since(requested), len(body))
	l.Metrics.ObserveDecodeErrors(feed.Name, counts.Errors)

	for _, err := range batch.Errors() {
		log.Debug().Err(err).Str("feed", feed.Name).Msg("Skipping undecodable entity")
	}

	if len(out) == cap(out) {
		log.Warn().Str("feed", feed.Name).Msg("Snapshot channel capacity at 0")
	}

	select {
	case out <- snapshot:
		l.Metrics.SetQueueDepth(len(out))
		log.Debug().Str("feed", feed.Name).Str("hash", snapshot.Hash.String()).Msg("Submitted snapshot")
	case <-ctx.Done():
	}
}

func failureLabel(err error) string {
	var fetchErr *transit.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind.String()
	}
	return "transport"
}
