package store_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
	"github.com/aescanero/dago-levelset/internal/store"
)

func newStore(t *testing.T, ttl time.Duration) (*store.RedisPlanStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisPlanStore(client, ttl, zap.NewNop()), mr
}

func sequence() *planner.Sequence {
	return &planner.Sequence{
		Amplitude: 4,
		Step:      0.4,
		Policy:    planner.PolicyFiltered,
		Digits:    3,
		Levels:    []float64{0, 0.4, 0.8, 0.4, 0},
		Accepted:  []float64{0, 0.4, 0.8},
	}
}

func TestKey(t *testing.T) {
	base := store.PlanKey{
		Expression: "((x ** 2) + (y ** 2))",
		Amplitude:  4,
		Options:    planner.DefaultOptions(),
		Sampling:   grid.DefaultSampling(),
	}
	k := store.Key(base)
	assert.Len(t, k, 64)
	assert.Equal(t, k, store.Key(base))

	other := base
	other.Amplitude = -4
	assert.NotEqual(t, k, store.Key(other))

	other = base
	other.Region = "x > 0.0"
	assert.NotEqual(t, k, store.Key(other))

	other = base
	other.Sampling.Resolution = 200
	assert.NotEqual(t, k, store.Key(other))
}

func TestRedisPlanStore_RoundTrip(t *testing.T) {
	s, mr := newStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", sequence()))
	assert.Equal(t, time.Hour, mr.TTL("levelset:plan:abc"))

	ok, err := s.Exists(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sequence(), got)

	require.NoError(t, s.Delete(ctx, "abc"))
	ok, err = s.Exists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPlanStore_Miss(t *testing.T) {
	s, _ := newStore(t, 0)
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrPlanNotFound)
}

func TestRedisPlanStore_Expiry(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", sequence()))
	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrPlanNotFound)
}

func TestRedisPlanStore_List(t *testing.T) {
	s, mr := newStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", sequence()))
	require.NoError(t, s.Save(ctx, "b", sequence()))
	require.NoError(t, mr.Set("unrelated", "x"))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestRedisPlanStore_Unavailable(t *testing.T) {
	s, mr := newStore(t, 0)
	mr.Close()
	err := s.Save(context.Background(), "a", sequence())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrPlanNotFound)
}
