// Package execution provides the execution-layer collaborators the publish
// pipeline uses to reconstruct blinded blocks: a local payload cache and a
// builder fallback for blind block proposals.
package execution

import (
	"context"
	"time"

	"github.com/attestantio/go-eth2-client/spec/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// CacheConfig holds configuration options for the payload cache.
type CacheConfig struct {
	// TTL is the time-to-live for cached payloads.
	TTL time.Duration
	// Capacity sets the maximum number of payloads the cache can hold.
	// If 0, the cache has no size limit.
	Capacity uint64
}

// DefaultCacheConfig returns a CacheConfig with default values. Payloads are
// only useful around their proposal slot, so the defaults are small.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      2 * time.Minute,
		Capacity: 10,
	}
}

// PayloadCache caches full execution payloads by their hash tree root. A
// payload header shares its hash tree root with the full payload it commits
// to, so entries added here are found again by the root of the blinded
// header alone.
type PayloadCache struct {
	cache *ttlcache.Cache[phase0.Root, *bellatrix.ExecutionPayload]
	log   logrus.FieldLogger

	hitsTotal       prometheus.Counter
	missesTotal     prometheus.Counter
	insertionsTotal prometheus.Counter
	evictionsTotal  prometheus.Counter
}

// NewPayloadCache creates a PayloadCache with the given configuration.
func NewPayloadCache(log logrus.FieldLogger, namespace string, config CacheConfig) *PayloadCache {
	opts := []ttlcache.Option[phase0.Root, *bellatrix.ExecutionPayload]{
		ttlcache.WithTTL[phase0.Root, *bellatrix.ExecutionPayload](config.TTL),
	}

	if config.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[phase0.Root, *bellatrix.ExecutionPayload](config.Capacity))
	}

	p := &PayloadCache{
		cache: ttlcache.New(opts...),
		log:   log.WithField("component", "payload_cache"),
		hitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payload_cache",
			Name:      "hits_total",
			Help:      "Total number of payload cache hits",
		}),
		missesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payload_cache",
			Name:      "misses_total",
			Help:      "Total number of payload cache misses",
		}),
		insertionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payload_cache",
			Name:      "insertions_total",
			Help:      "Total number of payload cache insertions",
		}),
		evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payload_cache",
			Name:      "evictions_total",
			Help:      "Total number of payload cache evictions",
		}),
	}

	p.cache.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, _ *ttlcache.Item[phase0.Root, *bellatrix.ExecutionPayload]) {
		p.evictionsTotal.Inc()
	})

	return p
}

// Register registers the cache's metrics with the provided registerer. If
// registerer is nil, the default prometheus registerer is used.
func (p *PayloadCache) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	for _, c := range []prometheus.Collector{p.hitsTotal, p.missesTotal, p.insertionsTotal, p.evictionsTotal} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Start begins background expiry of cached payloads.
func (p *PayloadCache) Start(ctx context.Context) error {
	go func() {
		p.log.Debug("Starting payload cache")
		p.cache.Start()
		p.log.Debug("Payload cache stopped")
	}()

	return nil
}

// Stop shuts down the cache and its background expiry.
func (p *PayloadCache) Stop() error {
	p.cache.Stop()

	return nil
}

// Add caches a full payload under its hash tree root and returns the root.
func (p *PayloadCache) Add(payload *bellatrix.ExecutionPayload) (phase0.Root, error) {
	if payload == nil {
		return phase0.Root{}, errors.New("nil execution payload")
	}

	root, err := payload.HashTreeRoot()
	if err != nil {
		return phase0.Root{}, errors.Wrap(err, "failed to compute payload root")
	}

	p.cache.Set(phase0.Root(root), payload, ttlcache.DefaultTTL)
	p.insertionsTotal.Inc()

	return phase0.Root(root), nil
}

// ByRoot returns the cached payload for the given root, if present.
func (p *PayloadCache) ByRoot(root phase0.Root) (*bellatrix.ExecutionPayload, bool) {
	item := p.cache.Get(root)
	if item == nil {
		p.missesTotal.Inc()

		return nil, false
	}

	p.hitsTotal.Inc()

	return item.Value(), true
}

// Len returns the number of payloads currently cached.
func (p *PayloadCache) Len() int {
	return p.cache.Len()
}
