package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colourscan/colourscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseline_RoundTripFiltersKnown(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultBaselineFile)
	res := sampleResults()
	require.NoError(t, SaveBaseline(p, res[:1]))

	base, err := LoadBaseline(p)
	require.NoError(t, err)
	assert.Len(t, base.Items, 2)

	res[0].Matches = append(res[0].Matches, types.Match{Position: 50, Escapes: 3, Text: "new"})
	filtered := FilterNew(res, base)
	require.Len(t, filtered, 2)
	assert.Equal(t, []types.Match{{Position: 50, Escapes: 3, Text: "new"}}, filtered[0].Matches)
	assert.Empty(t, filtered[1].Matches)
	assert.Len(t, res[0].Matches, 3, "input must not be modified")
}

func TestBaseline_KeyIncludesPath(t *testing.T) {
	base := Baseline{Items: map[string]bool{"a.sav.gz|0|HI": true}}
	res := []types.FileResult{{Path: "other.sav.gz", Matches: []types.Match{{Position: 0, Escapes: 3, Text: "HI"}}}}
	assert.Len(t, FilterNew(res, base)[0].Matches, 1)
}

func TestLoadBaseline_Errors(t *testing.T) {
	dir := t.TempDir()
	b, err := LoadBaseline(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.NotNil(t, b.Items)

	p := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o644))
	b, err = LoadBaseline(p)
	require.Error(t, err)
	assert.Empty(t, b.Items)
}

func TestShouldFail(t *testing.T) {
	res := sampleResults()
	assert.False(t, ShouldFail(res, "never"))
	assert.False(t, ShouldFail(res, ""))
	assert.True(t, ShouldFail(res, "any"))
	assert.False(t, ShouldFail(res[1:], "any"))
}
