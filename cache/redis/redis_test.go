// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c, err := Connect(Config{URL: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetSetDelete(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "missing")
	require.NoError(err)
	assert.False(found)

	require.NoError(c.Set(ctx, "detail:v1:pages:home", []byte(`{"a":1}`), time.Minute))
	data, found, err := c.Get(ctx, "detail:v1:pages:home")
	require.NoError(err)
	assert.True(found)
	assert.Equal([]byte(`{"a":1}`), data)

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "detail:v1:pages:home")
	require.NoError(err)
	assert.False(found)

	require.NoError(c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(c.Delete(ctx, "k"))
	_, found, _ = c.Get(ctx, "k")
	assert.False(found)
}

func TestDeletePattern(t *testing.T) {
	require := require.New(t)
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(c.Set(ctx, fmt.Sprintf("list:v1:pages:%d", i), []byte("x"), 0))
	}
	require.NoError(c.Set(ctx, "detail:v1:pages:home", []byte("x"), 0))

	n, err := c.DeletePattern(ctx, "list:v1:pages:*")
	require.NoError(err)
	assert.Equal(t, 250, n)

	for i := 0; i < 250; i++ {
		_, found, err := c.Get(ctx, fmt.Sprintf("list:v1:pages:%d", i))
		require.NoError(err)
		assert.False(t, found, i)
	}

	n, err = c.DeletePattern(ctx, "list:*")
	require.NoError(err)
	assert.Zero(t, n)

	_, found, err := c.Get(ctx, "detail:v1:pages:home")
	require.NoError(err)
	assert.True(t, found)
}

func TestConnect(t *testing.T) {
	_, err := Connect(Config{})
	assert.Error(t, err)

	_, err = Connect(Config{URL: "redis://%zz"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	c, err := Connect(Config{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}
