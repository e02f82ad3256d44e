package breedlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pawsense/internal/common/database"
	commonerrors "pawsense/internal/common/errors"
	commonhttp "pawsense/internal/common/http"
	"pawsense/internal/common/metrics"
	"pawsense/internal/models"
)

const (
	DefaultBaseURL = "https://api.thedogapi.com/v1"
	cacheKeyPrefix = "breed:"
)

var (
	ErrAPIKeyMissing = errors.New("BREED_API_KEY_MISSING")
	ErrUnauthorized  = errors.New("BREED_API_UNAUTHORIZED")
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Cache stores serialized lookups. Get returns database.ErrCacheMiss for
// unknown keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type Client struct {
	config Config
	http   *commonhttp.Client
	cache  Cache
	logger Logger
}

// breed is the subset of a TheDogAPI search hit that we expose.
type breed struct {
	Name        string  `json:"name"`
	Temperament string  `json:"temperament"`
	LifeSpan    string  `json:"life_span"`
	BredFor     string  `json:"bred_for"`
	BreedGroup  string  `json:"breed_group"`
	Origin      string  `json:"origin"`
	Height      measure `json:"height"`
	Weight      measure `json:"weight"`
}

type measure struct {
	Metric string `json:"metric"`
}

// NewClient builds a lookup client. httpClient and cache may be nil.
func NewClient(cfg Config, httpClient *commonhttp.Client, cache Cache, log Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = commonhttp.NewClient(cfg.Timeout)
	}
	return &Client{
		config: cfg,
		http:   httpClient,
		cache:  cache,
		logger: log,
	}
}

// Lookup returns the best match for name. An unknown breed is not an error:
// it yields Found=false with an explanatory message.
func (c *Client) Lookup(ctx context.Context, name string) (*models.DogInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, commonerrors.NewValidationError("breed_name is required", "breed_name")
	}
	if c.config.APIKey == "" {
		metrics.BreedLookups.WithLabelValues("error").Inc()
		return nil, commonerrors.NewConfigurationError("THE_DOG_API_KEY no está configurada", ErrAPIKeyMissing.Error())
	}

	key := cacheKeyPrefix + strings.ToLower(name)
	if info, ok := c.fromCache(ctx, key); ok {
		metrics.BreedLookups.WithLabelValues("cache_hit").Inc()
		return info, nil
	}

	info, err := c.search(ctx, name)
	if err != nil {
		metrics.BreedLookups.WithLabelValues("error").Inc()
		return nil, err
	}

	if !info.Found {
		metrics.BreedLookups.WithLabelValues("not_found").Inc()
		return info, nil
	}
	metrics.BreedLookups.WithLabelValues("found").Inc()
	c.toCache(ctx, key, info)
	return info, nil
}

func (c *Client) search(ctx context.Context, name string) (*models.DogInfo, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/breeds/search?q=" + url.QueryEscape(name)

	resp, err := c.http.Get(ctx, endpoint, map[string]string{"x-api-key": c.config.APIKey})
	if err != nil {
		return nil, commonerrors.NewBreedLookupFailedError(fmt.Errorf("connect: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, commonerrors.NewConfigurationError("API key inválida o expirada", ErrUnauthorized.Error())
	case resp.StatusCode >= 500:
		return nil, commonerrors.NewBreedLookupFailedError(fmt.Errorf("TheDogAPI retornó error %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, commonerrors.NewBreedLookupFailedError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var hits []breed
	if err := json.Unmarshal(resp.Body, &hits); err != nil {
		return nil, commonerrors.NewBreedLookupFailedError(fmt.Errorf("decode response: %w", err))
	}
	if len(hits) == 0 {
		return &models.DogInfo{
			Found:   false,
			Message: fmt.Sprintf("No se encontró información para la raza '%s'", name),
		}, nil
	}

	best := hits[0]
	if best.Name == "" {
		best.Name = name
	}
	return &models.DogInfo{
		Found:        true,
		Breed:        best.Name,
		Temperament:  best.Temperament,
		LifeSpan:     best.LifeSpan,
		HeightMetric: best.Height.Metric,
		WeightMetric: best.Weight.Metric,
		BredFor:      best.BredFor,
		BreedGroup:   best.BreedGroup,
		Origin:       best.Origin,
	}, nil
}

func (c *Client) fromCache(ctx context.Context, key string) (*models.DogInfo, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrCacheMiss) {
			c.warn("breed cache read failed", key, err)
		}
		return nil, false
	}
	var info models.DogInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		c.warn("breed cache entry corrupt", key, err)
		return nil, false
	}
	return &info, true
}

func (c *Client) toCache(ctx context.Context, key string, info *models.DogInfo) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.config.CacheTTL); err != nil {
		c.warn("breed cache write failed", key, err)
	}
}

func (c *Client) warn(msg, key string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, map[string]interface{}{"key": key, "error": err})
	}
}
