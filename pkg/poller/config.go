package poller

import (
	"time"

	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/util"
)

const DefaultPeriod = 10 * time.Second

// NewListenerFromSettings builds a listener over the configured feed registry,
// restricted to names when any are given.
func NewListenerFromSettings(settings util.Settings, names []string, collector *metrics.Collector) (*Listener, error) {
	period, err := settings.Duration("POLL_PERIOD", DefaultPeriod)
	if err != nil {
		return nil, err
	}
	timeout, err := settings.Duration("FETCH_TIMEOUT", feeds.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	registry := feeds.DefaultRegistry()
	if path := settings.String("FEEDS_FILE", ""); path != "" {
		if registry, err = feeds.LoadRegistryFile(path); err != nil {
			return nil, err
		}
	}

	feedList, err := registry.Select(names)
	if err != nil {
		return nil, err
	}

	listener := NewListener(feeds.NewClient(settings.String("API_KEY", ""), timeout), feedList, period)
	listener.Metrics = collector

	return listener, nil
}
