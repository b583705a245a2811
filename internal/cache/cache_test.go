package cache

import (
	"context"
	"testing"

	"foodgram/internal/config"
)

func TestNoopNeverHits(t *testing.T) {
	t.Parallel()

	var c Cache = Noop{}
	ctx := context.Background()
	if err := c.Set(ctx, "tags", []string{"soup"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []string
	found, err := c.Get(ctx, "tags", &out)
	if err != nil || found {
		t.Fatalf("expected miss, got found=%t err=%v", found, err)
	}
}

func TestOpenWithoutURLReturnsNoop(t *testing.T) {
	t.Parallel()

	c, closeFn, err := Open(context.Background(), config.RedisConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(Noop); !ok {
		t.Fatalf("expected Noop cache, got %T", c)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close returned %v", err)
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, _, err := Open(context.Background(), config.RedisConfig{URL: "://nope"}); err == nil {
		t.Fatal("expected parse error")
	}
}
