package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exercise(t *testing.T, c Cache, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	if err := SetJSON(ctx, c, "k", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	var got payload
	ok, err := GetJSON(ctx, c, "k", &got)
	if err != nil || !ok || got.Name != "a" || got.Count != 2 {
		t.Fatalf("GetJSON() = %+v, %v, %v", got, ok, err)
	}

	advance(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}

	_ = c.Set(ctx, "d", []byte("x"), time.Minute)
	if err := c.Delete(ctx, "d"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "d"); ok {
		t.Error("expected entry to be deleted")
	}

	_ = c.Set(ctx, "zero", []byte("x"), 0)
	if _, ok, _ := c.Get(ctx, "zero"); ok {
		t.Error("zero ttl should not store")
	}

	_ = c.Set(ctx, "bad", []byte("{not json"), time.Minute)
	if ok, err := GetJSON(ctx, c, "bad", &got); ok || err != nil {
		t.Errorf("GetJSON(bad) = %v, %v; want miss", ok, err)
	}
	if _, ok, _ := c.Get(ctx, "bad"); ok {
		t.Error("undecodable entry should be dropped")
	}
}

func TestMemory(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory().WithClock(func() time.Time { return now })
	exercise(t, m, func(d time.Duration) { now = now.Add(d) })

	t.Run("sweeps expired entries", func(t *testing.T) {
		ctx := context.Background()
		m := NewMemory().WithClock(func() time.Time { return now })
		for i := range 256 {
			_ = m.Set(ctx, fmt.Sprintf("k%d", i), []byte("x"), time.Second)
		}
		now = now.Add(time.Minute)
		_ = m.Set(ctx, "fresh", []byte("x"), time.Minute)
		if m.Len() != 1 {
			t.Errorf("expected only fresh entry after sweep, got %d", m.Len())
		}
	})
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedis(rdb, "rmp:")
	defer c.Close()

	exercise(t, c, mr.FastForward)

	t.Run("keys are prefixed", func(t *testing.T) {
		_ = c.Set(context.Background(), "posts", []byte("x"), time.Minute)
		if !mr.Exists("rmp:posts") {
			t.Error("expected prefixed key in redis")
		}
	})

	t.Run("DialRedis", func(t *testing.T) {
		r, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0", "p:")
		if err != nil {
			t.Fatalf("DialRedis() error = %v", err)
		}
		r.Close()

		if _, err := DialRedis(context.Background(), "not a url", ""); err == nil {
			t.Error("expected error for invalid url")
		}
	})
}
