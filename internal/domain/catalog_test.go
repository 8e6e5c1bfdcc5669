package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return BuildCatalog([]SubmissionEdge{
		{From: "closed-guard-bottom", Submission: "Armbar", Belt: BeltWhite, Setup: "control posture"},
		{From: "closed-guard-bottom", Submission: "Omoplata", Belt: BeltBlue},
		{From: "closed-guard-bottom", Submission: "Triangle Choke", Belt: BeltWhite},
		{From: "mount-top", Submission: "Armbar", Belt: BeltWhite},
		{From: "mount-top", Submission: "Ezekiel Choke", Belt: BeltPurple},
		{From: "back-mount-top", Submission: "Rear Naked Choke", Belt: BeltWhite},
		{From: "leg-entangle", Submission: "Heel Hook", Belt: BeltBrown},
		{From: "back-mount-top", Submission: "Bow & Arrow", Belt: BeltBlue},
	})
}

func TestFilterByPositionScenario(t *testing.T) {
	c := BuildCatalog([]SubmissionEdge{
		{From: "mount-top", Submission: "Armbar", Belt: BeltWhite},
		{From: "mount-top", Submission: "Kimura", Belt: BeltWhite},
		{From: "side-control-top", Submission: "Kimura", Belt: BeltWhite},
	})

	assert.Equal(t, []string{"Armbar", "Kimura"}, c.FilterByPosition(BeltAll, "mount-top"))
	assert.Equal(t, c.Edges(), c.FilterByTier(UpTo(BeltWhite)))
	assert.Len(t, c.FilterByTier(UpTo(BeltWhite)), 3)
}

func TestFilterByTier(t *testing.T) {
	c := testCatalog()

	t.Run("all returns every edge", func(t *testing.T) {
		assert.Equal(t, c.Edges(), c.FilterByTier(BeltAll))
	})

	t.Run("white keeps only white", func(t *testing.T) {
		for _, e := range c.FilterByTier(UpTo(BeltWhite)) {
			assert.Equal(t, BeltWhite, e.Belt)
		}
		assert.Len(t, c.FilterByTier(UpTo(BeltWhite)), 4)
	})

	t.Run("includes lower belts", func(t *testing.T) {
		assert.Len(t, c.FilterByTier(UpTo(BeltPurple)), 7)
		assert.Len(t, c.FilterByTier(UpTo(BeltBlack)), 8)
	})

	t.Run("is monotonic", func(t *testing.T) {
		belts := Belts()
		for i := 0; i < len(belts); i++ {
			for j := i; j < len(belts); j++ {
				lower := c.FilterByTier(UpTo(belts[i]))
				higher := c.FilterByTier(UpTo(belts[j]))
				for _, e := range lower {
					assert.Contains(t, higher, e, "%s ⊄ %s", belts[i], belts[j])
				}
			}
		}
	})

	t.Run("unknown filter admits nothing", func(t *testing.T) {
		assert.Empty(t, c.FilterByTier(BeltFilter("green")))
	})
}

func TestFilterByPosition(t *testing.T) {
	c := testCatalog()

	t.Run("matches exactly the edges from the position", func(t *testing.T) {
		for _, f := range []BeltFilter{BeltAll, UpTo(BeltWhite), UpTo(BeltBlue), UpTo(BeltBrown)} {
			filtered := c.FilterByTier(f)
			for _, p := range c.Positions(BeltAll) {
				want := map[string]bool{}
				for _, e := range filtered {
					if e.From == p {
						want[e.Submission] = true
					}
				}
				got := c.FilterByPosition(f, p)
				assert.Len(t, got, len(want), "%s at %s", p, f)
				for _, s := range got {
					assert.True(t, want[s], "%s should not be reachable from %s at %s", s, p, f)
				}
			}
		}
	})

	t.Run("orders by belt then first appearance", func(t *testing.T) {
		assert.Equal(t, []string{"Armbar", "Triangle Choke", "Omoplata"}, c.FilterByPosition(BeltAll, "closed-guard-bottom"))
	})

	t.Run("unknown position is empty", func(t *testing.T) {
		assert.Empty(t, c.FilterByPosition(BeltAll, "standing"))
	})
}

func TestSubmissionNames(t *testing.T) {
	c := testCatalog()

	t.Run("groups by lowest belt", func(t *testing.T) {
		want := []string{
			"Armbar", "Triangle Choke", "Rear Naked Choke",
			"Omoplata", "Bow & Arrow",
			"Ezekiel Choke",
			"Heel Hook",
		}
		if diff := cmp.Diff(want, c.SubmissionNames(BeltAll)); diff != "" {
			t.Errorf("SubmissionNames() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("is stable across builds", func(t *testing.T) {
		edges := testCatalog().Edges()
		first := BuildCatalog(edges).SubmissionNames(BeltAll)
		for i := 0; i < 20; i++ {
			if diff := cmp.Diff(first, BuildCatalog(edges).SubmissionNames(BeltAll)); diff != "" {
				t.Fatalf("order changed on rebuild %d:\n%s", i, diff)
			}
		}
	})
}

func TestCatalogIndices(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, 8, c.Len())
	assert.Len(t, c.EdgesFor("Armbar"), 2)
	assert.Len(t, c.EdgesFrom("back-mount-top"), 2)
	assert.Len(t, c.EdgesAt(BeltBlue), 2)
	assert.Equal(t, []string{"closed-guard-bottom", "mount-top", "back-mount-top", "leg-entangle"}, c.Positions(BeltAll))
	assert.Equal(t, []string{"closed-guard-bottom", "mount-top", "back-mount-top"}, c.Positions(UpTo(BeltWhite)))

	t.Run("input is copied", func(t *testing.T) {
		edges := []SubmissionEdge{{From: "a", Submission: "x", Belt: BeltWhite}}
		cat := BuildCatalog(edges)
		edges[0].Submission = "y"
		assert.Equal(t, "x", cat.Edges()[0].Submission)
	})
}

func TestCatalogMap(t *testing.T) {
	c := testCatalog()
	label := func(id string) string { return "L:" + id }

	t.Run("without selection nothing is dimmed", func(t *testing.T) {
		m := c.Map(UpTo(BeltWhite), "", label)

		assert.Nil(t, m.Highlight)
		require.Len(t, m.Edges, 4)
		for _, e := range m.Edges {
			assert.False(t, e.Dimmed)
			assert.False(t, e.Highlighted)
		}
		// three positions then three submissions
		require.Len(t, m.Nodes, 6)
		assert.Equal(t, "L:closed-guard-bottom", m.Nodes[0].Label)
		assert.Equal(t, SubmissionNodeID("Armbar"), m.Nodes[3].ID)
	})

	t.Run("selection highlights its submissions", func(t *testing.T) {
		m := c.Map(BeltAll, "mount-top", label)

		assert.Equal(t, []string{"Armbar", "Ezekiel Choke"}, m.Highlight)

		dimmed := map[string]bool{}
		for _, n := range m.Nodes {
			if n.Kind == NodeSubmission {
				dimmed[n.Label] = n.Dimmed
			}
			if n.ID == "mount-top" {
				assert.True(t, n.Selected)
			}
		}
		assert.False(t, dimmed["Armbar"])
		assert.False(t, dimmed["Ezekiel Choke"])
		assert.True(t, dimmed["Heel Hook"])

		highlighted := 0
		for _, e := range m.Edges {
			if e.Highlighted {
				highlighted++
				assert.Equal(t, "mount-top", e.From)
			}
		}
		assert.Equal(t, 2, highlighted)
	})

	t.Run("edge ids are unique", func(t *testing.T) {
		m := c.Map(BeltAll, "", label)
		ids := map[string]bool{}
		for _, e := range m.Edges {
			assert.False(t, ids[e.ID])
			ids[e.ID] = true
		}
	})

	t.Run("submission node carries its lowest belt", func(t *testing.T) {
		m := c.Map(BeltAll, "", label)
		for _, n := range m.Nodes {
			if n.Label == "Armbar" {
				assert.Equal(t, BeltWhite, n.Belt)
			}
		}
	})

	t.Run("highlight is the filtered position query", func(t *testing.T) {
		filters := []BeltFilter{BeltAll}
		for _, b := range Belts() {
			filters = append(filters, UpTo(b))
		}
		for _, f := range filters {
			for _, p := range c.Positions(BeltAll) {
				m := c.Map(f, p, label)
				if diff := cmp.Diff(c.FilterByPosition(f, p), m.Highlight); diff != "" {
					t.Errorf("Map(%s, %s) highlight mismatch (-want +got):\n%s", f, p, diff)
				}
			}
		}
	})
}
