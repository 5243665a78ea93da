package poller

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/transit"
)

const hashSeed = 0x5ab9a7

// Snapshot is one successful fetch and decode of a feed.
type Snapshot struct {
	Requested time.Time
	Responded time.Time
	Feed      feeds.Feed
	Batch     *transit.Batch
	Hash      uuid.UUID
	Length    int
}

func NewSnapshot(feed feeds.Feed, body []byte, batch *transit.Batch, requested time.Time, responded time.Time) Snapshot {
	return Snapshot{
		Requested: requested,
		Responded: responded,
		Feed:      feed,
		Batch:     batch,
		Hash:      ContentHash(body),
		Length:    len(body),
	}
}

// ContentHash is a 128-bit non-cryptographic digest of a raw feed body, built
// from two independently seeded xxhash digests.
func ContentHash(body []byte) uuid.UUID {
	var id uuid.UUID

	binary.BigEndian.PutUint64(id[:8], xxhash.Sum64(body))

	seeded := xxhash.NewWithSeed(hashSeed)
	seeded.Write(body)
	binary.BigEndian.PutUint64(id[8:], seeded.Sum64())

	return id
}

func (s Snapshot) Counts() transit.Counts {
	if s.Batch == nil {
		return transit.Counts{}
	}
	return s.Batch.Counts()
}

func (s Snapshot) String() string {
	return fmt.Sprintf("[%s %s]", s.Feed.Name, s.Counts())
}
