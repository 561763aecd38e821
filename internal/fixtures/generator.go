// Package fixtures generates synthetic vote CSVs and boundary GeoJSON
// for demos and load testing against a running service.
package fixtures

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
)

// Generation range constants.
const (
	electorateMin   = 800
	electorateRange = 3200
	turnoutMin      = 0.55
	turnoutRange    = 0.35
	baseLat         = 23.5
	baseLng         = 120.2
	cellDegrees     = 0.01
)

var parties = []string{"中國國民黨", "民主進步黨", "無黨籍"}

// Spec describes the synthetic dataset shape.
type Spec struct {
	Districts         int
	TownshipsPerDist  int
	VillagesPerTwnshp int
	CandidatesPerDist int
	Seed              int64
}

// Generator produces matched vote and boundary fixtures. A fixed seed
// reproduces the same dataset across runs.
type Generator struct {
	spec Spec
	rng  *rand.Rand
}

// New creates a Generator for the given spec.
func New(spec Spec) *Generator {
	if spec.Districts <= 0 {
		spec.Districts = 4
	}
	if spec.TownshipsPerDist <= 0 {
		spec.TownshipsPerDist = 3
	}
	if spec.VillagesPerTwnshp <= 0 {
		spec.VillagesPerTwnshp = 8
	}
	if spec.CandidatesPerDist <= 0 {
		spec.CandidatesPerDist = 3
	}
	return &Generator{
		spec: spec,
		rng:  rand.New(rand.NewSource(spec.Seed)), //nolint:gosec // deterministic fixtures
	}
}

type village struct {
	geoKey   string
	district string
	township string
	name     string
}

// WriteVotes emits the vote CSV with the full required header.
func (g *Generator) WriteVotes(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"geo_key", "electoral_district_name", "candidate_name", "party_name",
		"votes", "electorate", "total_votes", "county_name", "township_name", "village_name",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, v := range g.villages() {
		electorate := electorateMin + g.rng.Intn(electorateRange)
		totalVotes := int(float64(electorate) * (turnoutMin + g.rng.Float64()*turnoutRange))
		shares := g.shares(g.spec.CandidatesPerDist)
		for c := 0; c < g.spec.CandidatesPerDist; c++ {
			record := []string{
				v.geoKey,
				v.district,
				fmt.Sprintf("%s候選人%d", v.district, c+1),
				parties[c%len(parties)],
				strconv.Itoa(int(float64(totalVotes) * shares[c])),
				strconv.Itoa(electorate),
				strconv.Itoa(totalVotes),
				"測試縣",
				v.township,
				v.name,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBoundaries emits a GeoJSON FeatureCollection of one small square
// polygon per village, keyed by VILLCODE.
func (g *Generator) WriteBoundaries(w io.Writer) error {
	type geoFeature struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Geometry   map[string]any `json:"geometry"`
	}
	features := []geoFeature{}
	for i, v := range g.villages() {
		lat := baseLat + float64(i/50)*cellDegrees
		lng := baseLng + float64(i%50)*cellDegrees
		ring := [][]float64{
			{lng, lat},
			{lng + cellDegrees, lat},
			{lng + cellDegrees, lat + cellDegrees},
			{lng, lat + cellDegrees},
			{lng, lat},
		}
		features = append(features, geoFeature{
			Type:       "Feature",
			Properties: map[string]any{"VILLCODE": v.geoKey, "VILLNAME": v.name},
			Geometry:   map[string]any{"type": "Polygon", "coordinates": [][][]float64{ring}},
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(map[string]any{"type": "FeatureCollection", "features": features})
}

// villages enumerates the synthetic units deterministically. Geo keys are
// UUIDs derived from the seeded rng so votes and boundaries agree.
func (g *Generator) villages() []village {
	rng := rand.New(rand.NewSource(g.spec.Seed)) //nolint:gosec // deterministic fixtures
	var out []village
	for d := 1; d <= g.spec.Districts; d++ {
		district := fmt.Sprintf("第%02d選舉區", d)
		for t := 1; t <= g.spec.TownshipsPerDist; t++ {
			township := fmt.Sprintf("測試鄉%d-%d", d, t)
			for v := 1; v <= g.spec.VillagesPerTwnshp; v++ {
				var id uuid.UUID
				if _, err := rng.Read(id[:]); err != nil {
					continue
				}
				out = append(out, village{
					geoKey:   id.String(),
					district: district,
					township: township,
					name:     fmt.Sprintf("測試村%d", v),
				})
			}
		}
	}
	return out
}

// shares splits 1.0 into n random vote shares.
func (g *Generator) shares(n int) []float64 {
	raw := make([]float64, n)
	var sum float64
	for i := range raw {
		raw[i] = g.rng.Float64() + 0.1
		sum += raw[i]
	}
	for i := range raw {
		raw[i] /= sum
	}
	return raw
}
