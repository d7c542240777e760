package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedSpace struct {
	ID       uint   `json:"id"`
	JoinCode string `json:"join_code"`
}

func newTestManager(t *testing.T) *CacheManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client)
}

func TestCacheHelperRoundTrip(t *testing.T) {
	cm := newTestManager(t)
	ctx := context.Background()

	in := cachedSpace{ID: 7, JoinCode: "a1b2c3d4"}
	if err := cm.Space.Set(ctx, "code:a1b2c3d4", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out cachedSpace
	if err := cm.Space.Get(ctx, "code:a1b2c3d4", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Errorf("Get = %+v, want %+v", out, in)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	cm := newTestManager(t)

	var out cachedSpace
	if err := cm.Space.Get(context.Background(), "code:missing", &out); err != ErrCacheNotFound {
		t.Errorf("Get miss = %v, want ErrCacheNotFound", err)
	}
}

func TestInvalidateSpace(t *testing.T) {
	cm := newTestManager(t)
	ctx := context.Background()

	in := cachedSpace{ID: 7, JoinCode: "a1b2c3d4"}
	if err := cm.Space.Set(ctx, "code:a1b2c3d4", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cm.Space.Set(ctx, "id:7", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	InvalidateSpace(ctx, cm, 7, "a1b2c3d4")

	var out cachedSpace
	if err := cm.Space.Get(ctx, "code:a1b2c3d4", &out); err != ErrCacheNotFound {
		t.Errorf("code lookup after invalidate = %v, want ErrCacheNotFound", err)
	}
	if err := cm.Space.Get(ctx, "id:7", &out); err != ErrCacheNotFound {
		t.Errorf("id lookup after invalidate = %v, want ErrCacheNotFound", err)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if err := cm.Space.Set(ctx, "code:x", cachedSpace{}, time.Minute); err != nil {
		t.Errorf("Set with nil client = %v, want nil", err)
	}

	var out cachedSpace
	if err := cm.Space.Get(ctx, "code:x", &out); err != ErrCacheNotAvailable {
		t.Errorf("Get with nil client = %v, want ErrCacheNotAvailable", err)
	}
}
