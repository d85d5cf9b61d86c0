package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/attendai/attendai/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func entry(query string) *Entry {
	return &Entry{
		Query: query,
		Dates: "2024-05-01 to 2024-05-31",
		Result: &service.ResultSet{
			Columns: []string{"empId", "empName", "vrdate", "note"},
			Rows: []service.Row{
				{
					"empId":   int64(4),
					"empName": "Alice",
					"vrdate":  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
					"note":    nil,
				},
			},
		},
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "c1", entry("how many present")))
	got, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "how many present", got.Query)
	assert.Equal(t, []string{"empId", "empName", "vrdate", "note"}, got.Result.Columns)
	assert.Equal(t, int64(4), got.Result.Rows[0]["empId"])
	assert.True(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Equal(got.Result.Rows[0]["vrdate"].(time.Time)))
	assert.Nil(t, got.Result.Rows[0]["note"])

	// overwrite
	require.NoError(t, s.Put(ctx, "c1", entry("list absent")))
	got, err = s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "list absent", got.Query)

	// conversations are isolated
	_, err = s.Get(ctx, "c2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "c1"))
	_, err = s.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	exercise(t, s)
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(20 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "c1", entry("q")))
	time.Sleep(40 * time.Millisecond)

	_, err := s.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	_, rdb := setupRedis(t)
	s := NewRedisStoreFromClient(rdb, time.Hour)
	defer s.Close()
	exercise(t, s)
}

func TestRedisStoreExpires(t *testing.T) {
	mr, rdb := setupRedis(t)
	s := NewRedisStoreFromClient(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "c1", entry("q")))
	assert.True(t, mr.Exists(keyPrefix+"c1"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"c1"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	mr, rdb := setupRedis(t)
	s := NewRedisStoreFromClient(rdb, time.Minute)

	require.NoError(t, mr.Set(keyPrefix+"c1", "not gob"))
	_, err := s.Get(context.Background(), "c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePingFails(t *testing.T) {
	mr, rdb := setupRedis(t)
	s := NewRedisStoreFromClient(rdb, time.Minute)
	mr.Close()

	assert.Error(t, s.Ping(context.Background()))
}
