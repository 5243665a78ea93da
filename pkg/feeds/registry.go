package feeds

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const mtaFeedBase = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs"

// Feed is one GTFS-realtime endpoint.
type Feed struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	URL  string `yaml:"url" json:"url" validate:"required,url"`
}

func (f Feed) String() string {
	return f.Name
}

type Registry struct {
	Feeds []Feed `yaml:"feeds" validate:"required,min=1,dive"`

	byName map[string]Feed
}

var validate = validator.New()

// DefaultRegistry holds the NYCT subway feeds.
func DefaultRegistry() *Registry {
	registry := &Registry{
		Feeds: []Feed{{Name: "1234567", URL: mtaFeedBase}},
	}

	for _, name := range []string{"ace", "bdfm", "g", "jz", "nqrw", "l", "si"} {
		registry.Feeds = append(registry.Feeds, Feed{Name: name, URL: mtaFeedBase + "-" + name})
	}

	registry.index()
	return registry
}

// LoadRegistry reads a YAML document of the form `feeds: [{name, url}]`.
func LoadRegistry(reader io.Reader) (*Registry, error) {
	registry := &Registry{}

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(registry); err != nil {
		return nil, fmt.Errorf("feed registry: %w", err)
	}

	if err := validate.Struct(registry); err != nil {
		return nil, fmt.Errorf("feed registry: %w", err)
	}

	seen := map[string]bool{}
	for _, feed := range registry.Feeds {
		if seen[feed.Name] {
			return nil, fmt.Errorf("feed registry: duplicate feed %q", feed.Name)
		}
		seen[feed.Name] = true
	}

	registry.index()
	return registry, nil
}

func LoadRegistryFile(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadRegistry(file)
}

func (r *Registry) index() {
	r.byName = make(map[string]Feed, len(r.Feeds))
	for _, feed := range r.Feeds {
		r.byName[feed.Name] = feed
	}
}

func (r *Registry) Lookup(name string) (Feed, bool) {
	feed, ok := r.byName[name]
	return feed, ok
}

func (r *Registry) All() []Feed {
	feeds := make([]Feed, len(r.Feeds))
	copy(feeds, r.Feeds)
	return feeds
}

// Select returns the named feeds, or every feed when names is empty.
func (r *Registry) Select(names []string) ([]Feed, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	var feeds []Feed
	for _, name := range names {
		feed, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown feed %q", name)
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
