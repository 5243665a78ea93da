package poller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/transit"
	"google.golang.org/protobuf/proto"
)

func feedBody(t *testing.T, timestamp int64) []byte {
	data, err := proto.MarshalOptions{AllowPartial: true}.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("1.0"),
			Timestamp:           proto.Uint64(uint64(timestamp)),
		},
		Entity: []*gtfs.FeedEntity{
			{Id: proto.String("1"), Alert: &gtfs.Alert{}},
			{Id: proto.String("2")},
		},
	})
	require.NoError(t, err)
	return data
}

type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	errs    map[string]error
	block   map[string]chan struct{}
	fetches map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies:  map[string][]byte{},
		errs:    map[string]error{},
		block:   map[string]chan struct{}{},
		fetches: map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, feed feeds.Feed) ([]byte, error) {
	f.mu.Lock()
	f.fetches[feed.Name]++
	block := f.block[feed.Name]
	body, err := f.bodies[feed.Name], f.errs[feed.Name]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return body, err
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[name]
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("feed body"))
	b := ContentHash([]byte("feed body"))
	c := ContentHash([]byte("feed bodz"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a[:8], a[8:])
}

func TestListenerCapacity(t *testing.T) {
	listener := NewListener(newFakeFetcher(), feeds.DefaultRegistry().All(), time.Second)
	assert.Equal(t, 17, listener.Capacity())
}

func TestListenerTick(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["l"] = feedBody(t, 1709557200)
	fetcher.bodies["g"] = feedBody(t, 1709557200)
	fetcher.errs["ace"] = transit.NewError(transit.Timeout, errors.New("slow"))
	fetcher.bodies["bdfm"] = []byte{0xff, 0xff}

	feedList := []feeds.Feed{{Name: "l"}, {Name: "g"}, {Name: "ace"}, {Name: "bdfm"}}
	listener := NewListener(fetcher, feedList, time.Second)

	out := make(chan Snapshot, listener.Capacity())
	listener.Tick(context.Background(), out)
	close(out)

	var snapshots []Snapshot
	for snapshot := range out {
		snapshots = append(snapshots, snapshot)
	}

	require.Len(t, snapshots, 2)
	for _, snapshot := range snapshots {
		assert.Contains(t, []string{"l", "g"}, snapshot.Feed.Name)
		assert.Equal(t, ContentHash(fetcher.bodies["l"]), snapshot.Hash)
		assert.Equal(t, len(fetcher.bodies["l"]), snapshot.Length)
		assert.Equal(t, time.Unix(1709557200, 0).UTC(), snapshot.Batch.Timestamp)
		assert.False(t, snapshot.Responded.Before(snapshot.Requested))
		assert.Equal(t, "["+snapshot.Feed.Name+" p=0 s=0 a=1 e=1]", snapshot.String())
	}
}

func TestListenerSkipsBusyFeed(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["l"] = feedBody(t, 1709557200)
	fetcher.bodies["g"] = feedBody(t, 1709557200)
	release := make(chan struct{})
	fetcher.block["l"] = release

	listener := NewListener(fetcher, []feeds.Feed{{Name: "l"}, {Name: "g"}}, 50*time.Millisecond)
	out := make(chan Snapshot, listener.Capacity())

	listener.Tick(context.Background(), out)
	listener.Tick(context.Background(), out)

	assert.Equal(t, 1, fetcher.count("l"))
	assert.Equal(t, 2, fetcher.count("g"))

	close(release)
	assert.Eventually(t, func() bool { return len(out) == 3 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return !listener.inFlight["l"].Load() }, time.Second, 10*time.Millisecond)

	listener.Tick(context.Background(), out)
	assert.Equal(t, 2, fetcher.count("l"))
}

func TestListenerWithoutConstructor(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["l"] = feedBody(t, 1709557200)
	fetcher.bodies["g"] = feedBody(t, 1709557200)

	listener := &Listener{Fetcher: fetcher, Feeds: []feeds.Feed{{Name: "l"}}, Period: time.Second}
	out := make(chan Snapshot, 4)

	listener.Tick(context.Background(), out)
	assert.Len(t, out, 1)

	listener.Feeds = append(listener.Feeds, feeds.Feed{Name: "g"})
	listener.Tick(context.Background(), out)

	assert.Len(t, out, 3)
	assert.Equal(t, 1, fetcher.count("g"))
}

func TestListenerStartStops(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["l"] = feedBody(t, 1709557200)

	listener := NewListener(fetcher, []feeds.Feed{{Name: "l"}}, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	snapshots := listener.Start(ctx)

	first := <-snapshots
	assert.Equal(t, "l", first.Feed.Name)

	cancel()
	for range snapshots {
	}
	assert.GreaterOrEqual(t, fetcher.count("l"), 1)
}

type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *logBuffer {
	logs := &logBuffer{}
	previous := log.Logger
	log.Logger = zerolog.New(logs)
	t.Cleanup(func() { log.Logger = previous })
	return logs
}

func TestListenerBlocksOnFullChannel(t *testing.T) {
	logs := captureLogs(t)

	fetcher := newFakeFetcher()
	fetcher.bodies["l"] = feedBody(t, 1709557200)
	fetcher.bodies["g"] = feedBody(t, 1709557201)

	listener := NewListener(fetcher, []feeds.Feed{{Name: "l"}, {Name: "g"}}, 30*time.Millisecond)

	out := make(chan Snapshot, 1)
	out <- Snapshot{Feed: feeds.Feed{Name: "queued"}}

	listener.Tick(context.Background(), out)

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Snapshot channel capacity at 0")
	}, time.Second, 10*time.Millisecond)
	assert.True(t, listener.inFlight["l"].Load())
	assert.True(t, listener.inFlight["g"].Load())
	assert.Len(t, out, 1)

	received := map[string]int{}
	for i := 0; i < 3; i++ {
		select {
		case snapshot := <-out:
			received[snapshot.Feed.Name]++
		case <-time.After(time.Second):
			t.Fatalf("only received %v", received)
		}
	}

	assert.Equal(t, map[string]int{"queued": 1, "l": 1, "g": 1}, received)
	assert.Eventually(t, func() bool {
		return !listener.inFlight["l"].Load() && !listener.inFlight["g"].Load()
	}, time.Second, 10*time.Millisecond)
}
