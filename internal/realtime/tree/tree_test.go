package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "firebase-kit/internal/shared/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"users/ada", []string{"users", "ada"}},
		{"/users//ada/", []string{"users", "ada"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Split(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Split("users/a.b")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)
	_, err = Split("users/$id")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)
}

func TestNormalize(t *testing.T) {
	type score struct {
		Points int `json:"points"`
	}
	v, err := Normalize(map[string]any{"s": score{Points: 3}, "gone": nil, "empty": map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": map[string]any{"points": 3.0}}, v)

	v, err = Normalize(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Normalize(make(chan int))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSetGetDelete(t *testing.T) {
	var root any
	root = Set(root, []string{"users", "ada", "name"}, "Ada")
	root = Set(root, []string{"users", "bob"}, map[string]any{"name": "Bob"})

	assert.Equal(t, "Ada", Get(root, []string{"users", "ada", "name"}))
	assert.Nil(t, Get(root, []string{"users", "ada", "name", "deeper"}))
	assert.Nil(t, Get(root, []string{"missing"}))

	root = Set(root, []string{"users", "ada", "name"}, nil)
	assert.Nil(t, Get(root, []string{"users", "ada"}), "emptied parent is pruned")
	assert.NotNil(t, Get(root, []string{"users", "bob"}))

	root = Set(root, []string{"users", "bob"}, nil)
	assert.Nil(t, root)
}

func TestSetReplacesScalarWithBranch(t *testing.T) {
	root := Set(nil, []string{"a"}, "leaf")
	root = Set(root, []string{"a", "b"}, 1.0)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1.0}}, root)
}

func TestUpdate(t *testing.T) {
	root := Set(nil, []string{"users", "ada"}, map[string]any{"name": "Ada", "age": 36.0})

	root, err := Update(root, []string{"users"}, map[string]any{
		"ada/age": 37,
		"bob":     map[string]any{"name": "Bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 37.0, Get(root, []string{"users", "ada", "age"}))
	assert.Equal(t, "Ada", Get(root, []string{"users", "ada", "name"}))
	assert.Equal(t, "Bob", Get(root, []string{"users", "bob", "name"}))

	root, err = Update(root, []string{"users"}, map[string]any{"bob": nil})
	require.NoError(t, err)
	assert.Nil(t, Get(root, []string{"users", "bob"}))

	_, err = Update(root, nil, map[string]any{"": 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)
}

func TestCopyIsDeep(t *testing.T) {
	orig := map[string]any{"a": map[string]any{"b": 1.0}, "l": []any{"x"}}
	dup := Copy(orig).(map[string]any)
	dup["a"].(map[string]any)["b"] = 2.0
	dup["l"].([]any)[0] = "y"
	assert.Equal(t, 1.0, orig["a"].(map[string]any)["b"])
	assert.Equal(t, "x", orig["l"].([]any)[0])
}
