package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/lookup"
)

var (
	_ lookup.Cache = (*Memory)(nil)
	_ lookup.Cache = (*LRU)(nil)
	_ lookup.Cache = (*Redis)(nil)
	_ lookup.Cache = Nop{}
)

func sampleRecords() []bookmeta.BookRecord {
	pages := 412
	return []bookmeta.BookRecord{{
		Source:    bookmeta.GoogleBooks,
		Title:     bookmeta.Str("Dune"),
		Authors:   []string{"Frank Herbert"},
		PageCount: &pages,
		ISBN13:    bookmeta.Str("9780441013593"),
	}}
}

func key(q string) lookup.Key {
	return lookup.Key{Source: bookmeta.GoogleBooks, Query: "q:" + q, MaxResults: 10}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	_, ok := c.Get(ctx, key("dune"))
	assert.False(t, ok)

	c.Put(ctx, key("dune"), sampleRecords())
	got, ok := c.Get(ctx, key("dune"))
	require.True(t, ok)
	assert.Equal(t, sampleRecords(), got)

	// callers cannot corrupt the cached slice
	got[0].Authors = nil
	again, _ := c.Get(ctx, key("dune"))
	assert.Equal(t, []string{"Frank Herbert"}, again[0].Authors)

	assert.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())
	assert.Equal(t, 1, c.Len())
}

func TestMemory_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	c.Put(ctx, key("dune"), sampleRecords())
	_, ok := c.Get(ctx, lookup.Key{Source: bookmeta.OpenLibrary, Query: "q:dune", MaxResults: 10})
	assert.False(t, ok)
	_, ok = c.Get(ctx, lookup.Key{Source: bookmeta.GoogleBooks, Query: "q:dune", MaxResults: 5})
	assert.False(t, ok)
}

func TestLRU_Evicts(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	require.NoError(t, err)
	c.Put(ctx, key("a"), sampleRecords())
	c.Put(ctx, key("b"), sampleRecords())
	_, _ = c.Get(ctx, key("a"))
	c.Put(ctx, key("c"), sampleRecords())

	_, ok := c.Get(ctx, key("b"))
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get(ctx, key("a"))
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_InvalidSize(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Nop
	c.Put(ctx, key("a"), sampleRecords())
	_, ok := c.Get(ctx, key("a"))
	assert.False(t, ok)
}

// fakeRedis implements the two commands the cache uses.
type fakeRedis struct {
	redis.Cmdable
	m       map[string]string
	ttl     time.Duration
	failGet error
}

func (f *fakeRedis) Get(ctx context.Context, k string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", k)
	if f.failGet != nil {
		cmd.SetErr(f.failGet)
		return cmd
	}
	v, ok := f.m[k]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, k string, value interface{}, exp time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", k)
	switch v := value.(type) {
	case []byte:
		f.m[k] = string(v)
	case string:
		f.m[k] = v
	}
	f.ttl = exp
	cmd.SetVal("OK")
	return cmd
}

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fr := &fakeRedis{m: map[string]string{}}
	c := NewRedis(fr, time.Hour, nil)

	_, ok := c.Get(ctx, key("dune"))
	assert.False(t, ok)

	c.Put(ctx, key("dune"), sampleRecords())
	assert.Equal(t, time.Hour, fr.ttl)
	assert.Contains(t, fr.m, KeyPrefix+key("dune").String())

	got, ok := c.Get(ctx, key("dune"))
	require.True(t, ok)
	assert.Equal(t, sampleRecords(), got)
	assert.Nil(t, got[0].Subtitle, "absent fields stay absent through the cache")
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestRedis_EmptyResultIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(&fakeRedis{m: map[string]string{}}, 0, nil)
	c.Put(ctx, key("none"), nil)
	got, ok := c.Get(ctx, key("none"))
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedis_FailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	fr := &fakeRedis{m: map[string]string{KeyPrefix + key("bad").String(): "{not json"}}
	c := NewRedis(fr, time.Minute, nil)
	_, ok := c.Get(ctx, key("bad"))
	assert.False(t, ok)

	fr.failGet = errors.New("connection reset")
	_, ok = c.Get(ctx, key("dune"))
	assert.False(t, ok)
	assert.Equal(t, int64(2), c.Stats().Misses)
}
