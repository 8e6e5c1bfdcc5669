package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjplan/internal/codec"
	"jjplan/internal/domain"
)

func minimalDataset() *codec.Dataset {
	return &codec.Dataset{
		Version: "test",
		Positions: []codec.PositionRecord{
			{
				ID: "closed-guard", Label: "Closed Guard",
				Options: []codec.OptionRecord{
					{Label: "Mount", Kind: "transition", Target: "mount-top", EdgeLabel: "hip bump sweep"},
					{Label: "Armbar", Kind: "submission"},
				},
			},
			{
				ID: "mount-top", Label: "Mount",
				Options: []codec.OptionRecord{{Label: "Americana", Kind: "submission"}},
			},
		},
		StartPositions: []string{"closed-guard"},
		Catalog: []codec.CatalogRecord{
			{From: "mount-top", Submission: "Armbar", Belt: "white"},
			{From: "mount-top", Submission: "Kimura", Belt: "white"},
		},
		Tips:    []codec.TipRecord{{Position: "mount-top", Text: "Stay heavy."}},
		TapList: []codec.RosterRecord{{Name: "Armbar", Category: "Arm Locks"}},
	}
}

func TestLoadEmbedded(t *testing.T) {
	plan, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EmbeddedSource, plan.Source)
	assert.Equal(t, "2", plan.Version)
	assert.Len(t, plan.Fingerprint, 64)
	assert.Empty(t, plan.Graph.Validate())

	t.Run("includes the guard passing node", func(t *testing.T) {
		assert.True(t, plan.Graph.Has("guard-top"))
	})

	t.Run("start positions resolve", func(t *testing.T) {
		require.NotEmpty(t, plan.Starts)
		assert.Equal(t, "standing", plan.Starts[0].ID)
		for _, s := range plan.Starts {
			assert.True(t, plan.Graph.Has(s.ID), s.ID)
			assert.NotEmpty(t, s.Label)
		}
	})

	t.Run("every catalog position is in the graph", func(t *testing.T) {
		for _, p := range plan.Catalog.Positions(domain.BeltAll) {
			assert.True(t, plan.Graph.Has(p), p)
		}
	})

	t.Run("closed guard offers the hip bump sweep", func(t *testing.T) {
		opts, err := plan.Graph.OptionsFor("closed-guard-bottom")
		require.NoError(t, err)
		var found bool
		for _, o := range opts {
			if o.EdgeLabel == "hip bump sweep" {
				found = true
				assert.Equal(t, "mount-top", o.Target)
			}
		}
		assert.True(t, found)
	})

	t.Run("roster has four categories", func(t *testing.T) {
		assert.Equal(t, []string{"Chokes", "Arm Locks", "Leg Locks", "Specialty"}, domain.Categories(plan.Roster))
	})
}

func TestEmbeddedIsACopy(t *testing.T) {
	a := Embedded()
	a[0] = 'X'
	assert.NotEqual(t, a[0], Embedded()[0])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	for _, format := range codec.Formats() {
		t.Run(format, func(t *testing.T) {
			c, err := codec.ForFormat(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Export(minimalDataset(), &buf))
			path := filepath.Join(dir, "plan."+format)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			plan, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, path, plan.Source)
			assert.Equal(t, 2, plan.Graph.Len())
			assert.Equal(t, 2, plan.Catalog.Len())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(minimalDataset())
	require.NoError(t, err)
	b, err := Fingerprint(minimalDataset())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := minimalDataset()
	changed.Version = "other"
	c, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ds *codec.Dataset)
		path   string
	}{
		{
			name:   "dangling transition target",
			mutate: func(ds *codec.Dataset) { ds.Positions[0].Options[0].Target = "guard-top" },
			path:   "Positions.closed-guard",
		},
		{
			name:   "missing version",
			mutate: func(ds *codec.Dataset) { ds.Version = "" },
			path:   "Version",
		},
		{
			name:   "unknown belt",
			mutate: func(ds *codec.Dataset) { ds.Catalog[0].Belt = "green" },
			path:   "Catalog[0].Belt",
		},
		{
			name:   "unknown option kind",
			mutate: func(ds *codec.Dataset) { ds.Positions[0].Options[1].Kind = "sweep" },
			path:   "Positions[0].Options[1].Kind",
		},
		{
			name:   "transition without target",
			mutate: func(ds *codec.Dataset) { ds.Positions[0].Options[0].Target = "" },
			path:   "Positions[0].Options[0].Target",
		},
		{
			name:   "submission with target",
			mutate: func(ds *codec.Dataset) { ds.Positions[0].Options[1].Target = "mount-top" },
			path:   "Positions[0].Options[1].Target",
		},
		{
			name:   "duplicate position",
			mutate: func(ds *codec.Dataset) { ds.Positions[1].ID = "closed-guard" },
			path:   "Positions[1].ID",
		},
		{
			name:   "undefined start",
			mutate: func(ds *codec.Dataset) { ds.StartPositions = append(ds.StartPositions, "standing") },
			path:   "StartPositions[1]",
		},
		{
			name:   "undefined catalog position",
			mutate: func(ds *codec.Dataset) { ds.Catalog[1].From = "leg-entangle" },
			path:   "Catalog[1].From",
		},
		{
			name:   "undefined tip position",
			mutate: func(ds *codec.Dataset) { ds.Tips[0].Position = "turtle" },
			path:   "Tips[0].Position",
		},
		{
			name: "duplicate roster entry",
			mutate: func(ds *codec.Dataset) {
				ds.TapList = append(ds.TapList, codec.RosterRecord{Name: "Armbar", Category: "Arm Locks"})
			},
			path: "TapList[1].Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := minimalDataset()
			tt.mutate(ds)

			problems := Check(ds)
			require.NotEmpty(t, problems)
			paths := make([]string, 0, len(problems))
			for _, p := range problems {
				paths = append(paths, p.Path)
			}
			assert.Contains(t, paths, tt.path)

			_, err := Build(ds)
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}

	t.Run("clean dataset", func(t *testing.T) {
		assert.Empty(t, Check(minimalDataset()))
	})

	t.Run("nil dataset", func(t *testing.T) {
		assert.Len(t, Check(nil), 1)
	})
}
