package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriticalPath(t *testing.T) {
	tests := []struct {
		name        string
		items       []WorkItem
		wantPath    []string
		wantMinutes int
	}{
		{
			name:        "diamond prefers the heavier branch",
			items:       diamond(),
			wantPath:    []string{"A", "B", "D"},
			wantMinutes: 65,
		},
		{
			name:        "empty",
			items:       nil,
			wantPath:    []string{},
			wantMinutes: 0,
		},
		{
			name:        "single item",
			items:       []WorkItem{item("solo", 7)},
			wantPath:    []string{"solo"},
			wantMinutes: 7,
		},
		{
			name: "independent chains pick the longest",
			items: []WorkItem{
				item("a1", 5), item("b1", 1),
				item("a2", 5, "a1"), item("b2", 20, "b1"),
			},
			wantPath:    []string{"b1", "b2"},
			wantMinutes: 21,
		},
		{
			name: "ties keep the first discovered branch",
			items: []WorkItem{
				item("root", 10),
				item("left", 5, "root"),
				item("right", 5, "root"),
				item("join", 1, "left", "right"),
			},
			wantPath:    []string{"root", "left", "join"},
			wantMinutes: 16,
		},
		{
			name: "zero estimates still start at a root",
			items: []WorkItem{
				item("first", 0),
				item("second", 0, "first"),
				item("third", 3, "second"),
			},
			wantPath:    []string{"first", "second", "third"},
			wantMinutes: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Build(tt.items)
			require.NoError(t, err)

			path := CriticalPath(d)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantMinutes, d.PathMinutes(path))
		})
	}
}

func TestCriticalPathDoesNotChooseShorterBranch(t *testing.T) {
	d, err := Build(diamond())
	require.NoError(t, err)

	assert.NotEqual(t, []string{"A", "C", "D"}, CriticalPath(d))
	assert.Equal(t, 55, d.PathMinutes([]string{"A", "C", "D"}))
}

func TestCriticalPathNilDAG(t *testing.T) {
	assert.Empty(t, CriticalPath(nil))
}
