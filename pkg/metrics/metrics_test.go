package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveFetch("l", "ok", time.Second, 10)
		c.ObserveDecodeErrors("l", 2)
		c.TickSkipped("l")
		c.TickOverrun()
		c.SetQueueDepth(3)
		c.Duplicate()
		c.SetUpcoming(1)
		c.SetOutageComplexes(1)
		c.RefdataError("outages")
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.ObserveFetch("l", "ok", 200*time.Millisecond, 1024)
	c.ObserveFetch("l", "timeout", 10*time.Second, 0)
	c.ObserveDecodeErrors("l", 3)
	c.TickSkipped("g")
	c.SetQueueDepth(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.FetchTotal.WithLabelValues("l", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FetchTotal.WithLabelValues("l", "timeout")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.FetchBytes.WithLabelValues("l")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.DecodeErrors.WithLabelValues("l")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TicksSkipped.WithLabelValues("g")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.QueueDepth))
	assert.NotNil(t, c.Handler())
}
