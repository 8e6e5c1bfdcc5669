// Package loader reads the game plan dataset, checks it, and builds the
// read-only structures the rest of the service queries.
package loader

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"

	"jjplan/internal/codec"
	"jjplan/internal/domain"
)

// EmbeddedSource is the Source of a plan built from the embedded dataset
const EmbeddedSource = "embedded"

//go:embed data/gameplan.yaml
var embedded []byte

// GamePlan is a loaded, checked dataset with its query structures.
// It is immutable; a reload builds a new GamePlan.
type GamePlan struct {
	Version     string
	Graph       *domain.PositionGraph
	Catalog     *domain.Catalog
	Starts      []domain.StartPosition
	Tips        domain.Tips
	Roster      []domain.RosterEntry
	Dataset     *codec.Dataset
	Fingerprint string
	Source      string
}

// Embedded returns the raw canonical dataset compiled into the binary
func Embedded() []byte {
	return append([]byte(nil), embedded...)
}

// Load reads a dataset file, picking the codec from its extension.
// An empty path loads the embedded dataset.
func Load(path string) (*GamePlan, error) {
	if path == "" {
		return LoadBytes(embedded, codec.NewYAMLCodec(), EmbeddedSource)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	return LoadBytes(data, c, path)
}

// LoadBytes parses data with the given importer and builds the plan
func LoadBytes(data []byte, imp codec.Importer, source string) (*GamePlan, error) {
	ds, err := imp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	plan, err := Build(ds)
	if err != nil {
		return nil, err
	}
	plan.Source = source
	return plan, nil
}

// Build checks a parsed dataset and converts it to query structures
func Build(ds *codec.Dataset) (*GamePlan, error) {
	if problems := Check(ds); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	fp, err := Fingerprint(ds)
	if err != nil {
		return nil, err
	}

	return &GamePlan{
		Version:     ds.Version,
		Graph:       buildGraph(ds),
		Catalog:     buildCatalog(ds),
		Starts:      buildStarts(ds),
		Tips:        buildTips(ds),
		Roster:      buildRoster(ds),
		Dataset:     ds,
		Fingerprint: fp,
	}, nil
}

// Fingerprint returns the BLAKE2b-256 digest of the dataset's canonical JSON
// encoding, hex encoded. Equal datasets have equal fingerprints whatever
// format they were read from.
func Fingerprint(ds *codec.Dataset) (string, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("failed to encode dataset: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func buildGraph(ds *codec.Dataset) *domain.PositionGraph {
	positions := make([]domain.Position, 0, len(ds.Positions))
	var options []domain.PositionOption

	for _, p := range ds.Positions {
		positions = append(positions, domain.Position{ID: p.ID, Label: p.Label, Icon: p.Icon})
		for _, o := range p.Options {
			options = append(options, domain.PositionOption{
				From: p.ID,
				Option: domain.Option{
					Label:     o.Label,
					Kind:      domain.OptionKind(o.Kind),
					Target:    o.Target,
					EdgeLabel: o.EdgeLabel,
				},
			})
		}
	}

	return domain.BuildGraph(positions, options)
}

func buildCatalog(ds *codec.Dataset) *domain.Catalog {
	edges := make([]domain.SubmissionEdge, 0, len(ds.Catalog))
	for _, c := range ds.Catalog {
		edges = append(edges, domain.SubmissionEdge{
			From:       c.From,
			Submission: c.Submission,
			Belt:       domain.Belt(c.Belt),
			Setup:      c.Setup,
		})
	}
	return domain.BuildCatalog(edges)
}

func buildStarts(ds *codec.Dataset) []domain.StartPosition {
	labels := make(map[string]codec.PositionRecord, len(ds.Positions))
	for _, p := range ds.Positions {
		labels[p.ID] = p
	}

	starts := make([]domain.StartPosition, 0, len(ds.StartPositions))
	for _, id := range ds.StartPositions {
		p := labels[id]
		starts = append(starts, domain.StartPosition{ID: id, Label: p.Label, Icon: p.Icon})
	}
	return starts
}

func buildTips(ds *codec.Dataset) domain.Tips {
	list := make([]domain.Tip, 0, len(ds.Tips))
	for _, t := range ds.Tips {
		list = append(list, domain.Tip{Position: t.Position, Text: t.Text})
	}
	return domain.NewTips(list)
}

func buildRoster(ds *codec.Dataset) []domain.RosterEntry {
	roster := make([]domain.RosterEntry, 0, len(ds.TapList))
	for _, r := range ds.TapList {
		roster = append(roster, domain.RosterEntry{Name: r.Name, Category: r.Category})
	}
	return roster
}
