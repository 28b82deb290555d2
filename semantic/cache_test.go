package semantic

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/lpu/isa"
)

func TestCache(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	calls := 0
	backend := AdapterFunc(func(ctx context.Context, req Request) (isa.Value, error) {
		calls++
		if req.Strategy == STRATEGY_JUDGE {
			return isa.Number(100), nil
		}
		return isa.Text("reply " + req.Operands[0]), nil
	})

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), backend)
	require.NoError(err)
	defer cache.Close()

	ctx := context.Background()

	mor, err := NewRequest(isa.OP_MOR, nil, "one")
	require.NoError(err)

	value, err := cache.Evaluate(ctx, mor)
	assert.NoError(err)
	assert.Equal(isa.Text("reply one"), value)
	assert.Equal(1, calls)

	value, err = cache.Evaluate(ctx, mor)
	assert.NoError(err)
	assert.Equal(isa.Text("reply one"), value)
	assert.Equal(1, calls)

	aud, err := NewRequest(isa.OP_AUD, nil, "one")
	require.NoError(err)

	for range 2 {
		value, err = cache.Evaluate(ctx, aud)
		assert.NoError(err)
		assert.Equal(isa.Number(100), value)
	}
	assert.Equal(2, calls)

	// A different context stack is a different request.
	mor.Messages = []isa.Message{{Role: isa.ROLE_ASSISTANT, Content: "earlier"}}
	_, err = cache.Evaluate(ctx, mor)
	assert.NoError(err)
	assert.Equal(3, calls)
}

func TestCacheError(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("backend down")
	calls := 0
	backend := AdapterFunc(func(ctx context.Context, req Request) (isa.Value, error) {
		calls++
		return isa.Value{}, failure
	})

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), backend)
	require.NoError(t, err)
	defer cache.Close()

	req, err := NewRequest(isa.OP_DST, nil, "text")
	assert.NoError(err)

	for range 2 {
		_, err = cache.Evaluate(context.Background(), req)
		assert.ErrorIs(err, failure)
	}
	assert.Equal(2, calls)
}

func TestKey(t *testing.T) {
	assert := assert.New(t)

	a, _ := NewRequest(isa.OP_ADD, nil, "x", "y")
	b, _ := NewRequest(isa.OP_ADD, nil, "x", "y")
	c, _ := NewRequest(isa.OP_ADD, nil, "y", "x")

	assert.Equal(Key(a), Key(b))
	assert.NotEqual(Key(a), Key(c))
	assert.Equal(64, len(Key(a)))
}
