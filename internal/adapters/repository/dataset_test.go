package repository_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
	"github.com/tienyuan-huang/election/internal/domain/aggregate"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/search"
)

func dataset(year string) *repository.Dataset {
	res := aggregate.New().Aggregate([]model.RawVoteRow{{
		GeoKey:       "A1",
		DistrictName: "D1",
		Candidate:    "X",
		Party:        "P1",
		Votes:        10,
	}})
	return &repository.Dataset{
		Year:   year,
		Result: res,
		Index:  search.Build(res.Districts, nil),
	}
}

func TestDatasetStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty dataset store", t, func() {
		store := repository.NewDatasetStore()

		Convey("Unknown years are reported as such", func() {
			_, err := store.Get(ctx, "2024")
			So(err, ShouldEqual, repository.ErrUnknownYear)
		})

		Convey("A stored year round-trips", func() {
			store.Put(ctx, dataset("2024"))
			ds, err := store.Get(ctx, "2024")
			So(err, ShouldBeNil)
			So(ds.Year, ShouldEqual, "2024")
			So(store.Years(ctx), ShouldResemble, []string{"2024"})
		})

		Convey("The boundary cache is load-once", func() {
			So(store.HasBoundaries(ctx), ShouldBeFalse)

			store.SetBoundaries(ctx, []model.Boundary{{GeoKey: "A1", Lat: 1, Lng: 2}})
			So(store.HasBoundaries(ctx), ShouldBeTrue)

			// A second install must not replace the first payload.
			store.SetBoundaries(ctx, []model.Boundary{{GeoKey: "A1", Lat: 9, Lng: 9}})
			b, err := store.Boundary(ctx, "A1")
			So(err, ShouldBeNil)
			So(b.Lat, ShouldEqual, 1)
			So(b.Lng, ShouldEqual, 2)
		})

		Convey("Missing boundaries are reported", func() {
			store.SetBoundaries(ctx, nil)
			_, err := store.Boundary(ctx, "zzz")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}
