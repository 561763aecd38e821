package source

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// defaultJoinKey is the feature property carrying the geo key in the
// reference boundary dataset.
const defaultJoinKey = "VILLCODE"

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
	Geometry   geometry       `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// DecodeBoundaries reads a GeoJSON FeatureCollection and reduces each
// feature to its join key plus a centroid. Features without the join-key
// property or without usable geometry are skipped; the map client keeps
// the full geometry, this service only needs focus coordinates.
func DecodeBoundaries(r io.Reader, joinKey string) ([]model.Boundary, error) {
	if joinKey == "" {
		joinKey = defaultJoinKey
	}
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var out []model.Boundary
	for _, f := range fc.Features {
		key, ok := f.Properties[joinKey].(string)
		if !ok || key == "" {
			continue
		}
		lat, lng, ok := centroid(f.Geometry)
		if !ok {
			continue
		}
		out = append(out, model.Boundary{GeoKey: key, Lat: lat, Lng: lng})
	}
	return out, nil
}

// centroid averages the outer-ring vertices. Coarse, but it only anchors
// annotation markers and map recentering.
func centroid(g geometry) (lat, lng float64, ok bool) {
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 {
			return 0, 0, false
		}
		return ringCentroid(rings[0])
	case "MultiPolygon":
		var polys [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil || len(polys) == 0 || len(polys[0]) == 0 {
			return 0, 0, false
		}
		return ringCentroid(polys[0][0])
	}
	return 0, 0, false
}

func ringCentroid(ring [][2]float64) (lat, lng float64, ok bool) {
	if len(ring) == 0 {
		return 0, 0, false
	}
	var sumLng, sumLat float64
	for _, pt := range ring {
		// GeoJSON positions are [lng, lat].
		sumLng += pt[0]
		sumLat += pt[1]
	}
	n := float64(len(ring))
	return sumLat / n, sumLng / n, true
}
