package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/transit"
)

const (
	EquipmentURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fnyct_ene_equipments.json"
	OutagesURL   = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fnyct_ene.json"
	ComplexesURL = "https://data.ny.gov/resource/5f5g-n3cz.json"
	EntrancesURL = "https://data.ny.gov/resource/i9wp-a4ja.json"

	entrancePageSize = 1000
	entranceMaxPages = 10
)

type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client loads the slowly changing reference data sets. Directories are cached in
// redis when a cache is attached; outages are always fetched fresh.
type Client struct {
	Getter Getter

	EquipmentURL string
	OutagesURL   string
	ComplexesURL string
	EntrancesURL string

	MaxRetries uint64
	NewBackOff func() backoff.BackOff

	cache *cache.Cache[string]
}

func NewClient(getter Getter) *Client {
	return &Client{
		Getter:       getter,
		EquipmentURL: EquipmentURL,
		OutagesURL:   OutagesURL,
		ComplexesURL: ComplexesURL,
		EntrancesURL: EntrancesURL,
		MaxRetries:   3,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// WithCache keeps directory responses in redis for expiration.
func (c *Client) WithCache(client *redis.Client, expiration time.Duration) *Client {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))
	c.cache = cache.New[string](redisStore)
	return c
}

func (c *Client) Equipment(ctx context.Context) ([]AccessEquipment, error) {
	var equipment []AccessEquipment
	err := c.getJSON(ctx, c.EquipmentURL, "refdata:equipment", &equipment)
	return equipment, err
}

func (c *Client) Outages(ctx context.Context) ([]AccessOutage, error) {
	var outages []AccessOutage
	if err := c.getJSON(ctx, c.OutagesURL, "", &outages); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range outages {
		if outages[i].AsOf.IsZero() {
			outages[i].AsOf = now
		}
	}
	return outages, nil
}

func (c *Client) Complexes(ctx context.Context) ([]ComplexInfo, error) {
	var complexes []ComplexInfo
	err := c.getJSON(ctx, c.ComplexesURL, "refdata:complexes", &complexes)
	return complexes, err
}

// Entrances pages through the entrance directory until a short page comes back.
func (c *Client) Entrances(ctx context.Context) ([]SubwayEntrance, error) {
	base, err := url.Parse(c.EntrancesURL)
	if err != nil {
		return nil, err
	}

	var entrances []SubwayEntrance
	for page := 0; page < entranceMaxPages; page++ {
		query := base.Query()
		query.Set("$limit", strconv.Itoa(entrancePageSize))
		if page > 0 {
			query.Set("$offset", strconv.Itoa(page*entrancePageSize))
		}
		pageURL := *base
		pageURL.RawQuery = query.Encode()

		var batch []SubwayEntrance
		if err := c.getJSON(ctx, pageURL.String(), fmt.Sprintf("refdata:entrances:%d", page), &batch); err != nil {
			return nil, err
		}

		entrances = append(entrances, batch...)
		if len(batch) < entrancePageSize {
			break
		}
	}

	return entrances, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, cacheKey string, out any) error {
	if c.cache != nil && cacheKey != "" {
		cached, err := c.cache.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				log.Debug().Str("key", cacheKey).Msg("Loaded reference data from cache")
				return nil
			}
		}
	}

	log.Debug().Str("url", endpoint).Msg("Fetching reference data")

	var body []byte
	operation := func() error {
		var err error
		body, err = c.Getter.Get(ctx, endpoint)
		if transit.IsKind(err, transit.Status) {
			var statusErr *feeds.StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.NewBackOff(), c.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("url", endpoint).Dur("retry_in", wait).Msg("Reference data request failed")
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	if c.cache != nil && cacheKey != "" {
		if err := c.cache.Set(ctx, cacheKey, string(body)); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache reference data")
		}
	}

	return nil
}
