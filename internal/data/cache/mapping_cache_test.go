package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

func TestMappingKeys(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-6b8e-4b43-9d1f-3d5f1f0b7a11")
	if got := mappingKey(id, "default"); got != "pm:mapping:6f1c2a9e-6b8e-4b43-9d1f-3d5f1f0b7a11:default" {
		t.Fatalf("mappingKey: got=%q", got)
	}
	if got := vendorPattern(id); got != "pm:mapping:6f1c2a9e-6b8e-4b43-9d1f-3d5f1f0b7a11:*" {
		t.Fatalf("vendorPattern: got=%q", got)
	}
}

func TestNewMappingCacheWithoutAddrIsNoop(t *testing.T) {
	c, err := NewMappingCache(RedisConfig{}, logger.Nop())
	if err != nil {
		t.Fatalf("NewMappingCache: %v", err)
	}
	if _, ok := c.(NoopMappingCache); !ok {
		t.Fatalf("want NoopMappingCache, got %T", c)
	}
	if _, hit := c.Get(context.Background(), uuid.New(), "default"); hit {
		t.Fatalf("noop cache should never hit")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRedisCacheDefaultsTTL(t *testing.T) {
	c := NewRedisMappingCache(nil, 0, logger.Nop()).(*redisMappingCache)
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl: want=%v got=%v", DefaultTTL, c.ttl)
	}
	c = NewRedisMappingCache(nil, time.Minute, logger.Nop()).(*redisMappingCache)
	if c.ttl != time.Minute {
		t.Fatalf("ttl: want=1m got=%v", c.ttl)
	}
}
