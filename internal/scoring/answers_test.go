package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeKeepsOtherKeys(t *testing.T) {
	dst := AnswerMap{"5__gap1": "x"}
	merged := Merge(dst, AnswerMap{"5__gap2": "y"})

	assert.Equal(t, "x", merged["5__gap1"])
	assert.Equal(t, "y", merged["5__gap2"])
}

func TestMergeNestedObjectsFieldByField(t *testing.T) {
	dst := AnswerMap{
		"7__meta": map[string]any{"a": "1", "b": "2"},
	}
	merged := Merge(dst, AnswerMap{
		"7__meta": map[string]any{"b": "3", "c": "4"},
	})

	obj, ok := merged["7__meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", obj["a"])
	assert.Equal(t, "3", obj["b"])
	assert.Equal(t, "4", obj["c"])
}

func TestMergeScalarOverwritesSameKey(t *testing.T) {
	dst := AnswerMap{"5__gap1": "old"}
	merged := Merge(dst, AnswerMap{"5__gap1": "new"})
	assert.Equal(t, "new", merged["5__gap1"])
}

func TestMergeIntoNil(t *testing.T) {
	merged := Merge(nil, AnswerMap{"1__A": true})
	assert.Equal(t, true, merged["1__A"])
}

func TestDecodeAnswerMapEmpty(t *testing.T) {
	m, err := DecodeAnswerMap(nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestDecodeAnswerMapRoundTrip(t *testing.T) {
	m, err := DecodeAnswerMap([]byte(`{"31__gap1":"Rats","12__B":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Rats", m["31__gap1"])
	assert.Equal(t, true, m["12__B"])
}

func TestIsSelected(t *testing.T) {
	assert.True(t, IsSelected(true, "B"))
	assert.True(t, IsSelected("true", "B"))
	assert.True(t, IsSelected("B", "B"))
	assert.True(t, IsSelected("b", "B"))
	assert.False(t, IsSelected(false, "B"))
	assert.False(t, IsSelected("C", "B"))
	assert.False(t, IsSelected(nil, "B"))
	assert.False(t, IsSelected(float64(1), "B"))
}

func TestParseKey(t *testing.T) {
	key, ok := ParseKey("31__gap1")
	require.True(t, ok)
	assert.Equal(t, uint(31), key.QuestionID)
	assert.Equal(t, "gap1", key.Suffix)

	// label suffixes may contain the separator themselves
	key, ok = ParseKey("12__some__label")
	require.True(t, ok)
	assert.Equal(t, uint(12), key.QuestionID)
	assert.Equal(t, "some__label", key.Suffix)

	_, ok = ParseKey("no-separator")
	assert.False(t, ok)
	_, ok = ParseKey("abc__gap1")
	assert.False(t, ok)
}

func TestKeyFormatting(t *testing.T) {
	assert.Equal(t, "31__gap1", GapKey(31, 1))
	assert.Equal(t, "10__r0c0", CellKey(10, 0, 0))
	assert.Equal(t, "12__B", LabelKey(12, "B"))
	assert.Equal(t, "9__left2", MatchKey(9, 2))
}
