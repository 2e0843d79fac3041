package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	t.Cleanup(func() { client = nil })
	return mr
}

func TestAsideMissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			dest.Name = "fresh"
			dest.Count = fetches
			return nil
		}
	}

	var first cachedThing
	err := Aside(ctx, "thing:1", &first, UserTTL, fetch(&first))
	assert.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "fresh", first.Name)

	// Second read must come from the cache, not the fetcher.
	var second cachedThing
	err = Aside(ctx, "thing:1", &second, UserTTL, fetch(&second))
	assert.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestAsideInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var v cachedThing
	fetch := func() error {
		fetches++
		v.Count = fetches
		return nil
	}

	assert.NoError(t, Aside(ctx, "thing:2", &v, UserTTL, fetch))
	Invalidate(ctx, "thing:2")
	assert.NoError(t, Aside(ctx, "thing:2", &v, UserTTL, fetch))
	assert.Equal(t, 2, fetches)
}

func TestAsideWithoutClient(t *testing.T) {
	client = nil

	fetches := 0
	var v cachedThing
	err := Aside(context.Background(), "thing:3", &v, UserTTL, func() error {
		fetches++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, fetches)
}
