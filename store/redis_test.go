package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedis(client)

	mock.ExpectGet(redisKeyPrefix + KeyLastKnownLocation).SetVal(`{"latitude":13.05}`)

	got, err := s.Get(context.Background(), KeyLastKnownLocation)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"latitude":13.05}`), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetMissingKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedis(client)

	mock.ExpectGet(redisKeyPrefix + "absent").RedisNil()

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedis(client)

	mock.ExpectGet(redisKeyPrefix + "k").SetErr(errors.New("connection refused"))

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSetWithTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedis(client)

	mock.ExpectSet(redisKeyPrefix+KeyPermissionStatus, []byte(`{"status":"granted"}`), time.Hour).SetVal("OK")

	err := s.Set(context.Background(), KeyPermissionStatus, []byte(`{"status":"granted"}`), time.Hour)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedis(client)

	mock.ExpectDel(redisKeyPrefix + KeyLastKnownLocation).SetVal(1)

	err := s.Delete(context.Background(), KeyLastKnownLocation)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
