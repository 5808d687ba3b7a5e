package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

const (
	DefaultTTL   = 10 * time.Minute
	tombstoneTTL = time.Minute
)

// MappingCache is a read-through cache of mappings keyed by (vendor, namespace).
// Entries are ordered by the mapping's creation time and version so a late
// write of an older state never replaces a newer one. Every method is
// best-effort: failures are logged and look like misses.
type MappingCache interface {
	Get(ctx context.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, bool)
	// Fill stores m after a miss only when the key is empty.
	Fill(ctx context.Context, m *domain.Mapping)
	// Put writes m through after a committed mutation.
	Put(ctx context.Context, m *domain.Mapping)
	// Tombstone marks m as gone from namespace, blocking fills of the old state.
	Tombstone(ctx context.Context, m *domain.Mapping, namespace string)
	InvalidateVendor(ctx context.Context, vendorID uuid.UUID)
	Close() error
}

func mappingKey(vendorID uuid.UUID, namespace string) string {
	return fmt.Sprintf("pm:mapping:%s:%s", vendorID, namespace)
}

func vendorPattern(vendorID uuid.UUID) string {
	return fmt.Sprintf("pm:mapping:%s:*", vendorID)
}

// Entries are "<created_at µs>:<rank>:<json>"; a tombstone has no json.
// rank is 2*version for live entries and 2*version+1 for tombstones, so a
// tombstone outranks the live entry it replaces.
func entryRank(m *domain.Mapping, tombstone bool) int {
	rank := 2 * m.Version
	if tombstone {
		rank++
	}
	return rank
}

func createdMicros(m *domain.Mapping) int64 {
	if us := m.CreatedAt.UnixMicro(); us > 0 {
		return us
	}
	return 0
}

func entryPrefix(m *domain.Mapping, tombstone bool) string {
	return fmt.Sprintf("%d:%d:", createdMicros(m), entryRank(m, tombstone))
}

func encodeEntry(m *domain.Mapping) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return entryPrefix(m, false) + string(raw), nil
}

// decodeEntry returns (nil, nil) for a tombstone.
func decodeEntry(raw string) (*domain.Mapping, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed cache entry")
	}
	if parts[2] == "" {
		return nil, nil
	}
	var m domain.Mapping
	if err := json.Unmarshal([]byte(parts[2]), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// putIfNewerScript writes ARGV[3] unless the key holds an entry at the same
// or a later (created, rank).
// KEYS[1] = mapping key
// ARGV[1] = created_at µs, ARGV[2] = rank, ARGV[3] = entry, ARGV[4] = ttl ms
var putIfNewerScript = goredis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
    local c, v = string.match(cur, "^(%d+):(%d+):")
    c = tonumber(c)
    v = tonumber(v)
    local nc = tonumber(ARGV[1])
    local nv = tonumber(ARGV[2])
    if c and v and (c > nc or (c == nc and v >= nv)) then
        return 0
    end
end
redis.call("SET", KEYS[1], ARGV[3], "PX", ARGV[4])
return 1
`)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewMappingCache returns a Redis cache, or a no-op cache when Addr is empty.
func NewMappingCache(cfg RedisConfig, log *logger.Logger) (MappingCache, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		log.Info("Mapping cache disabled (REDIS_ADDR not set)")
		return NoopMappingCache{}, nil
	}
	rdb, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisMappingCache(rdb, cfg.TTL, log), nil
}

func NewRedisClient(cfg RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type redisMappingCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisMappingCache(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) MappingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisMappingCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With("service", "RedisMappingCache"),
	}
}

func (c *redisMappingCache) Get(ctx context.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, bool) {
	raw, err := c.rdb.Get(ctx, mappingKey(vendorID, namespace)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("mapping cache get failed", "vendor_id", vendorID, "namespace", namespace, "error", err)
		}
		return nil, false
	}
	m, err := decodeEntry(raw)
	if err != nil {
		c.log.Warn("mapping cache entry corrupt", "vendor_id", vendorID, "namespace", namespace, "error", err)
		return nil, false
	}
	if m == nil {
		return nil, false
	}
	return m, true
}

func (c *redisMappingCache) Fill(ctx context.Context, m *domain.Mapping) {
	if m == nil {
		return
	}
	entry, err := encodeEntry(m)
	if err != nil {
		return
	}
	if err := c.rdb.SetNX(ctx, mappingKey(m.VendorID, m.Namespace), entry, c.ttl).Err(); err != nil {
		c.log.Warn("mapping cache fill failed", "mapping_id", m.ID, "error", err)
	}
}

func (c *redisMappingCache) Put(ctx context.Context, m *domain.Mapping) {
	if m == nil {
		return
	}
	entry, err := encodeEntry(m)
	if err != nil {
		return
	}
	c.putIfNewer(ctx, mappingKey(m.VendorID, m.Namespace), m, entryRank(m, false), entry, c.ttl)
}

func (c *redisMappingCache) Tombstone(ctx context.Context, m *domain.Mapping, namespace string) {
	if m == nil || namespace == "" {
		return
	}
	ttl := tombstoneTTL
	if c.ttl < ttl {
		ttl = c.ttl
	}
	c.putIfNewer(ctx, mappingKey(m.VendorID, namespace), m, entryRank(m, true), entryPrefix(m, true), ttl)
}

func (c *redisMappingCache) putIfNewer(ctx context.Context, key string, m *domain.Mapping, rank int, entry string, ttl time.Duration) {
	args := []any{createdMicros(m), rank, entry, ttl.Milliseconds()}
	if err := putIfNewerScript.Run(ctx, c.rdb, []string{key}, args...).Err(); err != nil {
		c.log.Warn("mapping cache write failed", "key", key, "mapping_id", m.ID, "version", m.Version, "error", err)
		// A failed write must not leave the previous state visible.
		if delErr := c.rdb.Del(ctx, key).Err(); delErr != nil {
			c.log.Warn("mapping cache evict failed", "key", key, "error", delErr)
		}
	}
}

func (c *redisMappingCache) InvalidateVendor(ctx context.Context, vendorID uuid.UUID) {
	iter := c.rdb.Scan(ctx, 0, vendorPattern(vendorID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("mapping cache scan failed", "vendor_id", vendorID, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("mapping cache vendor invalidate failed", "vendor_id", vendorID, "error", err)
	}
}

func (c *redisMappingCache) Close() error { return c.rdb.Close() }

// NoopMappingCache always misses.
type NoopMappingCache struct{}

func (NoopMappingCache) Get(context.Context, uuid.UUID, string) (*domain.Mapping, bool) {
	return nil, false
}
func (NoopMappingCache) Fill(context.Context, *domain.Mapping)              {}
func (NoopMappingCache) Put(context.Context, *domain.Mapping)               {}
func (NoopMappingCache) Tombstone(context.Context, *domain.Mapping, string) {}
func (NoopMappingCache) InvalidateVendor(context.Context, uuid.UUID)        {}
func (NoopMappingCache) Close() error                                       { return nil }
