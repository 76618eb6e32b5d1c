package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionNumbering(t *testing.T) {
	b := New()
	b.Section("User Summary")
	b.Section("Submissions Analysis")
	b.Section("Friends")

	out := b.String()
	assert.Contains(t, out, "## 1. User Summary")
	assert.Contains(t, out, "## 2. Submissions Analysis")
	assert.Contains(t, out, "## 3. Friends")
	assert.Equal(t, 3, strings.Count(out, strings.Repeat("=", 40)))
}

func TestWriteFileCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Shared", "profile.txt")

	b := New()
	b.Title("# Profile")
	b.Add("- line")
	require.NoError(t, b.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Profile\nGenerated on: "))
	assert.True(t, strings.HasSuffix(string(data), "- line"))
}

func TestCounterMostCommon(t *testing.T) {
	c := NewCounter()
	for _, v := range []string{"OK", "OK", "WA", "OK"} {
		c.Add(v)
	}

	entries := c.MostCommon(0)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Key: "OK", Count: 3}, entries[0])
	assert.Equal(t, Entry{Key: "WA", Count: 1}, entries[1])
}

func TestCounterTiesKeepFirstEncounterOrder(t *testing.T) {
	c := NewCounter()
	for _, v := range []string{"dp", "greedy", "math", "greedy", "dp", "math"} {
		c.Add(v)
	}

	entries := c.MostCommon(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "dp", entries[0].Key)
	assert.Equal(t, "greedy", entries[1].Key)
	assert.Equal(t, "math", entries[2].Key)
}

func TestCounterTopNTruncation(t *testing.T) {
	c := NewCounter()
	tags := []string{"a", "b", "c", "d", "e"}
	for i, tag := range tags {
		for j := 0; j <= i; j++ {
			c.Add(tag)
		}
	}

	entries := c.MostCommon(2)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Key: "e", Count: 5}, entries[0])
	assert.Equal(t, Entry{Key: "d", Count: 4}, entries[1])
}
