package store

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	val     string
	getErr  error
	setErr  error
	lastKey string
	lastSet interface{}
	lastTTL time.Duration
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	f.lastKey = key
	return goredis.NewStringResult(f.val, f.getErr)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	f.lastKey = key
	f.lastSet = value
	f.lastTTL = expiration
	return goredis.NewStatusResult("OK", f.setErr)
}

func TestNewRedisStore_ValidatesArguments(t *testing.T) {
	_, err := NewRedisStore(nil, "k")
	require.Error(t, err)
	_, err = NewRedisStore(&fakeRedis{}, " ")
	require.Error(t, err)
}

func TestRedisStore_Load(t *testing.T) {
	rdb := &fakeRedis{val: "<html></html>"}
	s, err := NewRedisStore(rdb, "training_plan")
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(doc))
	require.Equal(t, "doc:training_plan", rdb.lastKey)
}

func TestRedisStore_LoadMissingKey(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{getErr: goredis.Nil}, "training_plan")
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_LoadError(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{getErr: errors.New("connection refused")}, "training_plan")
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.ErrorContains(t, err, "connection refused")
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Save(t *testing.T) {
	rdb := &fakeRedis{}
	s, err := NewRedisStore(rdb, "training_plan")
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), []byte("doc")))
	require.Equal(t, []byte("doc"), rdb.lastSet)
	require.Zero(t, rdb.lastTTL)

	rdb.setErr = errors.New("readonly replica")
	require.ErrorContains(t, s.Save(context.Background(), []byte("doc")), "readonly replica")
}
