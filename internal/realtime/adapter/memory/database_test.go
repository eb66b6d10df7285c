package memory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "firebase-kit/internal/shared/errors"
)

func TestDatabase_SetGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()

	require.NoError(t, db.Set(ctx, "users/ada", map[string]any{"name": "Ada", "age": 36}))

	v, err := db.Get(ctx, "users/ada/age")
	require.NoError(t, err)
	assert.Equal(t, 36.0, v)

	require.NoError(t, db.Update(ctx, "users/ada", map[string]any{"age": 37, "langs/go": true}))
	v, err = db.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"ada": map[string]any{"name": "Ada", "age": 37.0, "langs": map[string]any{"go": true}},
	}, v)

	require.NoError(t, db.Delete(ctx, "users/ada"))
	v, err = db.Get(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDatabase_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()
	require.NoError(t, db.Set(ctx, "a", map[string]any{"b": 1}))

	v, err := db.Get(ctx, "a")
	require.NoError(t, err)
	v.(map[string]any)["b"] = 2.0

	again, err := db.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again)
}

func TestDatabase_UpdateRejectedIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()
	require.NoError(t, db.Set(ctx, "a", 1))

	err := db.Update(ctx, "", map[string]any{"a": 2, "bad.key": 3})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)

	v, err := db.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestDatabase_PushKeysAreOrdered(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()

	var keys []string
	for i := 0; i < 5; i++ {
		key, err := db.Push(ctx, "messages", map[string]any{"n": i})
		require.NoError(t, err)
		keys = append(keys, key)
	}
	assert.True(t, sort.StringsAreSorted(keys))

	v, err := db.Get(ctx, "messages")
	require.NoError(t, err)
	assert.Len(t, v, 5)
}

func TestDatabase_ConcurrentPush(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.Push(ctx, "q", true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := db.Get(ctx, "q")
	require.NoError(t, err)
	assert.Len(t, v, 20)
}
