package main

import (
	"flag"
	"os"

	"github.com/tienyuan-huang/election/internal/fixtures"
)

// Default dataset shape constants.
const (
	defaultDistricts  = 4
	defaultTownships  = 3
	defaultVillages   = 8
	defaultCandidates = 3
)

func main() {
	var (
		votesPath  = flag.String("votes", "votes.csv", "Output path for the vote CSV")
		geoPath    = flag.String("geo", "boundaries.geojson", "Output path for the boundary GeoJSON")
		districts  = flag.Int("districts", defaultDistricts, "Number of electoral districts")
		townships  = flag.Int("townships", defaultTownships, "Townships per district")
		villages   = flag.Int("villages", defaultVillages, "Villages per township")
		candidates = flag.Int("candidates", defaultCandidates, "Candidates per district")
		seed       = flag.Int64("seed", 1, "Random seed; identical seeds reproduce identical datasets")
	)
	flag.Parse()

	gen := fixtures.New(fixtures.Spec{
		Districts:         *districts,
		TownshipsPerDist:  *townships,
		VillagesPerTwnshp: *villages,
		CandidatesPerDist: *candidates,
		Seed:              *seed,
	})

	votes, err := os.Create(*votesPath)
	if err != nil {
		os.Stderr.WriteString("create votes file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer votes.Close()
	if err := gen.WriteVotes(votes); err != nil {
		os.Stderr.WriteString("write votes: " + err.Error() + "\n")
		os.Exit(1)
	}

	geo, err := os.Create(*geoPath)
	if err != nil {
		os.Stderr.WriteString("create geo file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer geo.Close()
	if err := gen.WriteBoundaries(geo); err != nil {
		os.Stderr.WriteString("write boundaries: " + err.Error() + "\n")
		os.Exit(1)
	}
}
