package source_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tienyuan-huang/election/internal/adapters/source"
)

const header = "geo_key,electoral_district_name,candidate_name,party_name,votes,electorate,total_votes,county_name,township_name,village_name"

func TestDecodeVotes(t *testing.T) {
	Convey("Given a well-formed CSV", t, func() {
		data := header + "\n" +
			"A1,D1,X,P1,600,1000,900,C,T,V1\n" +
			"A1,D1,Y,P2,300,1000,900,C,T,V1\n"

		Convey("All rows decode with their fields", func() {
			rows, err := source.DecodeVotes(strings.NewReader(data))
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].GeoKey, ShouldEqual, "A1")
			So(rows[0].DistrictName, ShouldEqual, "D1")
			So(rows[0].Votes, ShouldEqual, 600)
			So(rows[0].Electorate, ShouldEqual, 1000)
			So(rows[1].Candidate, ShouldEqual, "Y")
		})
	})

	Convey("Given a header missing a required column", t, func() {
		data := "geo_key,candidate_name,party_name,votes,electorate,total_votes,county_name,township_name\nA1,X,P1,1,2,3,C,T\n"

		Convey("Decoding fails with a schema error naming the column", func() {
			_, err := source.DecodeVotes(strings.NewReader(data))
			So(errors.Is(err, source.ErrSchema), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "electoral_district_name")
		})
	})

	Convey("Given an empty input", t, func() {
		_, err := source.DecodeVotes(strings.NewReader(""))
		So(errors.Is(err, source.ErrSchema), ShouldBeTrue)
	})

	Convey("Given non-numeric counts", t, func() {
		data := header + "\nA1,D1,X,P1,abc,,12,C,T,V1\n"

		Convey("They coerce to zero instead of failing", func() {
			rows, err := source.DecodeVotes(strings.NewReader(data))
			So(err, ShouldBeNil)
			So(rows[0].Votes, ShouldEqual, 0)
			So(rows[0].Electorate, ShouldEqual, 0)
			So(rows[0].TotalVotes, ShouldEqual, 12)
		})
	})

	Convey("Given thousands separators in counts", t, func() {
		data := header + "\nA1,D1,X,P1,\"1,234\",\"5,000\",\"4,000\",C,T,V1\n"
		rows, err := source.DecodeVotes(strings.NewReader(data))
		So(err, ShouldBeNil)
		So(rows[0].Votes, ShouldEqual, 1234)
	})

	Convey("Given a malformed row", t, func() {
		data := header + "\n\"A1,D1\n"

		Convey("Decoding halts with a parse error", func() {
			_, err := source.DecodeVotes(strings.NewReader(data))
			So(errors.Is(err, source.ErrParse), ShouldBeTrue)
		})
	})

	Convey("Given reordered columns", t, func() {
		data := "votes,geo_key,electoral_district_name,candidate_name,party_name,electorate,total_votes,county_name,township_name\n" +
			"42,A1,D1,X,P1,100,90,C,T\n"

		Convey("Columns resolve by name, not position", func() {
			rows, err := source.DecodeVotes(strings.NewReader(data))
			So(err, ShouldBeNil)
			So(rows[0].Votes, ShouldEqual, 42)
			So(rows[0].Village, ShouldEqual, "")
		})
	})
}

func TestDecodeBoundaries(t *testing.T) {
	Convey("Given a feature collection with a polygon", t, func() {
		data := `{"type":"FeatureCollection","features":[
			{"properties":{"VILLCODE":"A1"},"geometry":{"type":"Polygon","coordinates":[[[120,23],[121,23],[121,24],[120,24]]]}},
			{"properties":{"OTHER":"B1"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}},
			{"properties":{"VILLCODE":"C1"},"geometry":{"type":"MultiPolygon","coordinates":[[[[10,20],[12,20],[12,22],[10,22]]]]}}
		]}`

		Convey("Features with the join key reduce to centroids", func() {
			bs, err := source.DecodeBoundaries(strings.NewReader(data), "VILLCODE")
			So(err, ShouldBeNil)
			So(bs, ShouldHaveLength, 2)
			So(bs[0].GeoKey, ShouldEqual, "A1")
			So(bs[0].Lng, ShouldAlmostEqual, 120.5)
			So(bs[0].Lat, ShouldAlmostEqual, 23.5)
			So(bs[1].GeoKey, ShouldEqual, "C1")
			So(bs[1].Lng, ShouldAlmostEqual, 11)
			So(bs[1].Lat, ShouldAlmostEqual, 21)
		})
	})

	Convey("Given invalid JSON", t, func() {
		_, err := source.DecodeBoundaries(strings.NewReader("{nope"), "")
		So(errors.Is(err, source.ErrParse), ShouldBeTrue)
	})
}
