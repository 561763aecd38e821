package fixtures_test

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tienyuan-huang/election/internal/adapters/source"
	"github.com/tienyuan-huang/election/internal/domain/aggregate"
	"github.com/tienyuan-huang/election/internal/fixtures"
)

func TestGenerator(t *testing.T) {
	spec := fixtures.Spec{
		Districts:         2,
		TownshipsPerDist:  2,
		VillagesPerTwnshp: 3,
		CandidatesPerDist: 3,
		Seed:              42,
	}

	Convey("Given a seeded generator", t, func() {
		g := fixtures.New(spec)

		Convey("The vote CSV decodes through the production decoder", func() {
			var buf bytes.Buffer
			So(g.WriteVotes(&buf), ShouldBeNil)

			rows, err := source.DecodeVotes(&buf)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2*2*3*3)

			Convey("And aggregates into the configured districts", func() {
				res := aggregate.New().Aggregate(rows)
				So(res.Districts, ShouldHaveLength, 2)
				So(res.Villages, ShouldHaveLength, 2*2*3)
				So(res.Dropped, ShouldEqual, 0)
				for _, d := range res.Districts {
					So(d.Winner, ShouldNotBeEmpty)
				}
			})
		})

		Convey("The boundary GeoJSON matches the vote geo keys", func() {
			var votesBuf, geoBuf bytes.Buffer
			So(g.WriteVotes(&votesBuf), ShouldBeNil)
			So(g.WriteBoundaries(&geoBuf), ShouldBeNil)

			rows, err := source.DecodeVotes(&votesBuf)
			So(err, ShouldBeNil)
			bounds, err := source.DecodeBoundaries(&geoBuf, "VILLCODE")
			So(err, ShouldBeNil)
			So(bounds, ShouldHaveLength, 2*2*3)

			keys := map[string]bool{}
			for _, b := range bounds {
				keys[b.GeoKey] = true
			}
			for _, r := range rows {
				So(keys[r.GeoKey], ShouldBeTrue)
			}
		})

		Convey("The same seed reproduces the same bytes", func() {
			var a, b bytes.Buffer
			So(fixtures.New(spec).WriteVotes(&a), ShouldBeNil)
			So(fixtures.New(spec).WriteVotes(&b), ShouldBeNil)
			So(a.String(), ShouldEqual, b.String())
		})

		Convey("Zero values fall back to defaults", func() {
			var buf bytes.Buffer
			So(fixtures.New(fixtures.Spec{}).WriteVotes(&buf), ShouldBeNil)

			rows, err := source.DecodeVotes(&buf)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 4*3*8*3)
		})
	})
}
