package redis_db

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestParseRedisURL_DockerStyle(t *testing.T) {
	opts, err := ParseRedisURL("redis:6379")
	assert.NoError(t, err)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Empty(t, opts.Password)
}

func TestParseRedisURL_PasswordWithoutColon(t *testing.T) {
	opts, err := ParseRedisURL("redis://s3cret@localhost:6379")
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
}

func TestParseRedisURL_Full(t *testing.T) {
	opts, err := ParseRedisURL("redis://:pass@example.com:6380/2")
	assert.NoError(t, err)
	assert.Equal(t, "example.com:6380", opts.Addr)
	assert.Equal(t, "pass", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	r, err := NewRedisClient(mr.Addr())
	assert.NoError(t, err)
	assert.NotNil(t, r.Client())
	assert.NotNil(t, r.MakeRedisClient())
}

func TestNewRedisClient_EmptyAddress(t *testing.T) {
	_, err := NewRedisClient("")
	assert.Error(t, err)
}
