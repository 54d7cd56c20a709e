package docpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Node {
	t.Helper()
	n, err := Parse([]byte(s))
	require.NoError(t, err)
	return n
}

func TestResolveScenarios(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		want any
	}{
		{"nested mapping", `{"archive":{"results":{"x":5}}}`, "archive/results/x", int64(5)},
		{"sequence index", `{"items":[10,20,30]}`, "items/1", int64(20)},
		{"empty segments dropped", `{"a":{"b":[true]}}`, "/a//b/0/", true},
		{"root marker", `{"a":{"b":"c"}}`, "#/a/b", "c"},
		{"empty path is root", `{"a":1}`, "", map[string]any{"a": int64(1)}},
		{"null leaf", `{"a":null}`, "a", nil},
		{"nested sequences", `{"m":[[1,2],[3,4]]}`, "m/1/0", int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(mustParse(t, tt.doc), tt.path)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got.Value()); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestResolveMatchesManualIndexing(t *testing.T) {
	raw := map[string]any{
		"archive": map[string]any{
			"run": []any{
				map[string]any{"method": []any{map[string]any{"basis": "tight"}}},
			},
		},
	}
	doc := MustFromValue(raw)

	manual := raw["archive"].(map[string]any)["run"].([]any)[0].(map[string]any)["method"].([]any)[0].(map[string]any)["basis"]
	got, err := Resolve(doc, "archive/run/0/method/0/basis", Strict(true))
	require.NoError(t, err)
	assert.Equal(t, manual, got.Value())
}

func TestResolveMissingKey(t *testing.T) {
	doc := mustParse(t, `{"archive":{"results":{}}}`)

	got, err := Resolve(doc, "archive/results/properties/electronic")
	require.NoError(t, err)
	assert.True(t, IsMissing(got))
	assert.Nil(t, got.Value())

	_, err = Resolve(doc, "archive/results/properties/electronic", Strict(true))
	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.Contains(t, err.Error(), "archive/results/properties")
}

func TestResolveNumericSegmentPolicy(t *testing.T) {
	t.Run("index into sequence", func(t *testing.T) {
		got, err := Resolve(mustParse(t, `{"s":["x","y"]}`), "s/0")
		require.NoError(t, err)
		assert.Equal(t, "x", got.Value())
	})

	t.Run("numeric key on mapping is never a key lookup", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"m":{"0":"a"}}`), "m/0")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("non-numeric segment on sequence", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"s":[1]}`), "s/first")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("negative index is a key", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"s":[1]}`), "s/-1")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("descend into scalar", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"a":1}`), "a/b", Strict(true))
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestResolveIndexOutOfRange(t *testing.T) {
	doc := mustParse(t, `{"items":[10,20,30]}`)
	for _, strict := range []bool{true, false} {
		_, err := Resolve(doc, "items/3", Strict(strict))
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	_, err := Resolve(doc, "items/99999999999999999999999")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestResolveReferences(t *testing.T) {
	t.Run("single indirection", func(t *testing.T) {
		got, err := Resolve(mustParse(t, `{"a":"#/b","b":42}`), "a")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Value())
	})

	t.Run("chain", func(t *testing.T) {
		got, err := Resolve(mustParse(t, `{"a":"#/b","b":"#/c","c":42}`), "a")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Value())
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"a":"#/b","b":"#/a"}`), "a")
		assert.ErrorIs(t, err, ErrReferenceCycle)
	})

	t.Run("self reference", func(t *testing.T) {
		_, err := Resolve(mustParse(t, `{"a":"#/a"}`), "a")
		assert.ErrorIs(t, err, ErrReferenceCycle)
	})

	t.Run("depth cap", func(t *testing.T) {
		doc := mustParse(t, `{"a":"#/b","b":"#/c","c":"#/d","d":1}`)
		_, err := Resolve(doc, "a", MaxReferenceDepth(2))
		assert.ErrorIs(t, err, ErrReferenceCycle)
	})

	t.Run("dangling pointer", func(t *testing.T) {
		doc := mustParse(t, `{"a":"#/nowhere"}`)
		got, err := Resolve(doc, "a")
		require.NoError(t, err)
		assert.True(t, IsMissing(got))

		_, err = Resolve(doc, "a", Strict(true))
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("reference root", func(t *testing.T) {
		doc := mustParse(t, `{"archive":{"ref":"#/run/0/energy","run":[{"energy":-3.5}]}}`)
		got, err := Resolve(doc, "archive/ref", ReferenceRoot("archive"))
		require.NoError(t, err)
		assert.Equal(t, -3.5, got.Value())
	})

	t.Run("plain strings are values", func(t *testing.T) {
		got, err := Resolve(mustParse(t, `{"a":"b"}`), "a")
		require.NoError(t, err)
		assert.Equal(t, "b", got.Value())
	})
}

func TestFollowPointerList(t *testing.T) {
	doc := mustParse(t, `{
		"archive": {
			"results": {"total": ["/run/0/dos/0", "#/run/0/dos/1"], "energies": "/run/0/grid"},
			"run": [{"dos": [{"value": [1, 2]}, {"value": [3, 4]}], "grid": [0.1, 0.2]}]
		}
	}`)
	r := New(ReferenceRoot("archive"), Strict(true))

	got, err := r.Follow(doc, "archive/results/total")
	require.NoError(t, err)
	want := []any{
		map[string]any{"value": []any{int64(1), int64(2)}},
		map[string]any{"value": []any{int64(3), int64(4)}},
	}
	assert.Equal(t, want, got.Value())

	grid, err := r.Follow(doc, "archive/results/energies")
	require.NoError(t, err)
	assert.Equal(t, []any{0.1, 0.2}, grid.Value())

	_, err = r.Follow(doc, "archive/run")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFromValueRejectsUnknownTypes(t *testing.T) {
	_, err := FromValue(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ch")
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"a", "0", "b"}, Split("#/a/0//b/"))
	assert.Empty(t, Split("/"))
	assert.Empty(t, Split("#"))
	assert.Equal(t, []string{"#tag"}, Split("#tag"))
	assert.True(t, IsReference("#/x"))
	assert.False(t, IsReference("/x"))
}

func TestFollowMarkedPointer(t *testing.T) {
	doc := mustParse(t, `{"ref":"#/grid","grid":[1,2]}`)
	got, err := New().Follow(doc, "ref")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, got.Value())
}

func TestHashPrefixedKey(t *testing.T) {
	doc := mustParse(t, `{"#tag":1,"tag":2}`)

	got, err := Resolve(doc, "#tag")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Value(), "only the #/ marker is stripped")

	got, err = Resolve(doc, "#/tag")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Value())

	got, err = Resolve(doc, "#")
	require.NoError(t, err)
	assert.Equal(t, KindMapping, got.Kind())
}
