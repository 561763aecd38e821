// Package source decodes the tabular vote data and the geographic
// boundary data this service aggregates.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// Required header columns. village_name is optional; a missing value only
// shortens the display name.
var requiredColumns = []string{
	"geo_key",
	"electoral_district_name",
	"candidate_name",
	"party_name",
	"votes",
	"electorate",
	"total_votes",
	"county_name",
	"township_name",
}

const villageColumn = "village_name"

// DecodeVotes reads the full CSV stream into raw rows. The header is
// validated up front: any missing required column fails with ErrSchema
// naming the column. The first malformed data row fails with ErrParse.
func DecodeVotes(r io.Reader) ([]model.RawVoteRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty input: %w", ErrSchema)
		}
		return nil, fmt.Errorf("read header: %w: %v", ErrParse, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrSchema, name)
		}
	}

	var rows []model.RawVoteRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		rows = append(rows, model.RawVoteRow{
			GeoKey:       field(record, cols, "geo_key"),
			DistrictName: field(record, cols, "electoral_district_name"),
			Candidate:    field(record, cols, "candidate_name"),
			Party:        field(record, cols, "party_name"),
			Votes:        numField(record, cols, "votes"),
			Electorate:   numField(record, cols, "electorate"),
			TotalVotes:   numField(record, cols, "total_votes"),
			County:       field(record, cols, "county_name"),
			Township:     field(record, cols, "township_name"),
			Village:      field(record, cols, villageColumn),
		})
	}
	return rows, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// numField coerces to int, treating absent or non-numeric values as 0.
func numField(record []string, cols map[string]int, name string) int {
	s := field(record, cols, name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
