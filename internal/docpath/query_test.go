package docpath

import (
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	input := `
{
  "archive": {
    "run": [
      {"program": {"name": "FHI-aims", "version": "221103"}},
      {"program": {"name": "VASP"}}
    ],
    "metadata": {"calc_id": "abc123"}
  }
}
`
	data, err := oj.ParseString(input)
	require.NoError(t, err)

	t.Run("wildcard over sequence", func(t *testing.T) {
		matches, err := Query(data, "$.archive.run[*].program.name")
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "FHI-aims", matches[0].Value)
		assert.Equal(t, "VASP", matches[1].Value)
		assert.Equal(t, "$.archive.run[0].program.name", matches[0].Path)
	})

	t.Run("node input", func(t *testing.T) {
		doc := MustFromValue(data)
		matches, err := Query(doc, "$.archive.metadata")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, map[string]any{"calc_id": "abc123"}, matches[0].Value)
	})

	t.Run("invalid selector", func(t *testing.T) {
		_, err := Query(data, "$.[[")
		assert.Error(t, err)
	})
}

func TestToJSONPath(t *testing.T) {
	x := ToJSONPath("#/archive/run/0/method/0/k_mesh")
	assert.Equal(t, "$.archive.run[0].method[0].k_mesh", x.String())

	data := map[string]any{"items": []any{int64(10), int64(20), int64(30)}}
	assert.Equal(t, []any{int64(20)}, ToJSONPath("items/1").Get(data))
}
