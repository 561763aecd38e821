package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
	"github.com/tienyuan-huang/election/internal/adapters/source"
	service "github.com/tienyuan-huang/election/internal/app"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/selection"
	"github.com/tienyuan-huang/election/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const votesCSV = `geo_key,electoral_district_name,candidate_name,party_name,votes,electorate,total_votes,county_name,township_name,village_name
A1,alpha,Lin,PartyX,700,2000,1000,North,East,First
A1,alpha,Wu,PartyY,300,2000,1000,North,East,First
A2,alpha,Lin,PartyX,100,900,500,North,East,Second
A2,alpha,Wu,PartyY,400,900,500,North,East,Second
B1,beta,Chen,PartyY,900,1500,1000,South,West,Third
B1,beta,Ho,PartyX,100,1500,1000,South,West,Third
`

const boundariesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"properties": {"VILLCODE": "A1"}, "geometry": {"type": "Polygon",
      "coordinates": [[[120,23],[121,23],[121,24],[120,24]]]}},
    {"properties": {"VILLCODE": "A2"}, "geometry": {"type": "Polygon",
      "coordinates": [[[121,23],[122,23],[122,24],[121,24]]]}},
    {"properties": {"VILLCODE": "B1"}, "geometry": {"type": "Polygon",
      "coordinates": [[[122,23],[123,23],[123,24],[122,24]]]}}
  ]
}`

// fakeFetcher serves in-memory payloads and counts fetches per path.
type fakeFetcher struct {
	mu      sync.Mutex
	files   map[string]string
	fail    map[string]bool
	fetches map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		files: map[string]string{
			"votes-2024.csv": votesCSV,
			"votes-2020.csv": votesCSV,
			"villages.json":  boundariesGeoJSON,
		},
		fail:    map[string]bool{},
		fetches: map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[path]++
	if f.fail[path] {
		return nil, fmt.Errorf("%w: %s unavailable", source.ErrFetch, path)
	}
	body, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrFetch, path)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFetcher) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[path]
}

func testYears() map[string]model.YearSource {
	return map[string]model.YearSource{
		"2024": {VotesPath: "votes-2024.csv", GeoPath: "villages.json"},
		"2020": {VotesPath: "votes-2020.csv", GeoPath: "villages.json"},
	}
}

func startService(t *testing.T, ff *fakeFetcher, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithYears(testYears()),
		service.WithFetcher(ff),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestLoadYear(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		ff := newFakeFetcher()
		svc := startService(t, ff)

		Convey("An unconfigured year is rejected", func() {
			err := svc.LoadYear(ctx, "1066")
			So(errors.Is(err, repository.ErrUnknownYear), ShouldBeTrue)
			So(svc.CurrentYear(ctx), ShouldBeEmpty)
		})

		Convey("Loading a configured year builds its dataset", func() {
			So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
			So(svc.CurrentYear(ctx), ShouldEqual, "2024")

			Convey("Nothing renders until the user selects", func() {
				So(svc.Selection(ctx).Mode, ShouldEqual, selection.NoSelection)
				vs, err := svc.Villages(ctx)
				So(err, ShouldBeNil)
				So(vs, ShouldBeEmpty)
			})

			Convey("Single village lookup ignores the selection", func() {
				v, err := svc.Village(ctx, "A1")
				So(err, ShouldBeNil)
				So(v.Name, ShouldEqual, "NorthEastFirst")
				So(v.Leader.Name, ShouldEqual, "Lin")
				So(v.Leader.Votes, ShouldEqual, 700)
				So(v.DistrictWinner, ShouldEqual, "Lin")
				So(v.Outcome.Color, ShouldNotBeEmpty)

				_, err = svc.Village(ctx, "ZZ")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("The selector lists every district", func() {
				opts, err := svc.Options(ctx)
				So(err, ShouldBeNil)
				So(opts.Districts, ShouldResemble, []string{"alpha", "beta"})
				So(opts.AllCount, ShouldEqual, 2)
				So(opts.Placeholder, ShouldNotBeEmpty)
			})
		})

		Convey("A load failure leaves no active year", func() {
			ff.fail["votes-2024.csv"] = true
			err := svc.LoadYear(ctx, "2024")
			So(errors.Is(err, source.ErrFetch), ShouldBeTrue)
			So(svc.CurrentYear(ctx), ShouldBeEmpty)
		})

		Convey("A schema defect surfaces as ErrSchema", func() {
			ff.files["votes-2024.csv"] = "geo_key,votes\nA1,10\n"
			err := svc.LoadYear(ctx, "2024")
			So(errors.Is(err, source.ErrSchema), ShouldBeTrue)
		})
	})
}

func TestEagerInitialSelection(t *testing.T) {
	Convey("Under the eager policy every district renders on load", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher(), service.WithInitialSelection("eager"))

		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
		So(svc.Selection(ctx).Mode, ShouldEqual, selection.AllMatching)

		vs, err := svc.Villages(ctx)
		So(err, ShouldBeNil)
		So(vs, ShouldHaveLength, 3)
	})
}

func TestDispatch(t *testing.T) {
	Convey("Given a loaded service", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher())

		Convey("Dispatch before any load fails", func() {
			_, err := svc.Dispatch(ctx, selection.Event{Kind: selection.ChooseAll})
			So(errors.Is(err, repository.ErrUnknownYear), ShouldBeTrue)
		})

		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)

		Convey("Choosing a district narrows the render to it", func() {
			st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.ChooseDistrict, District: "alpha"})
			So(err, ShouldBeNil)
			So(st.Mode, ShouldEqual, selection.SingleDistrict)

			vs, err := svc.Villages(ctx)
			So(err, ShouldBeNil)
			So(vs, ShouldHaveLength, 2)
			for _, v := range vs {
				So(v.DistrictName, ShouldEqual, "alpha")
				So(v.Outcome.Color, ShouldNotBeEmpty)
			}
		})

		Convey("Choosing an unknown district changes nothing", func() {
			before := svc.Selection(ctx)
			st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.ChooseDistrict, District: "gamma"})
			So(err, ShouldBeNil)
			So(st, ShouldResemble, before)
		})

		Convey("A query repopulates the selector and defers the render", func() {
			st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.SetQuery, Query: "bet"})
			So(err, ShouldBeNil)
			So(st.Mode, ShouldEqual, selection.NoSelection)
			So(st.Filtered, ShouldResemble, []string{"beta"})

			vs, err := svc.Villages(ctx)
			So(err, ShouldBeNil)
			So(vs, ShouldBeEmpty)

			Convey("Choosing all renders only the matches", func() {
				st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.ChooseAll})
				So(err, ShouldBeNil)
				So(st.Mode, ShouldEqual, selection.AllMatching)

				vs, err := svc.Villages(ctx)
				So(err, ShouldBeNil)
				So(vs, ShouldHaveLength, 1)
				So(vs[0].GeoKey, ShouldEqual, "B1")
			})

			Convey("Clearing the query restores the full list", func() {
				st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.ClearQuery})
				So(err, ShouldBeNil)
				So(st.Filtered, ShouldResemble, []string{"alpha", "beta"})
				So(st.Mode, ShouldEqual, selection.NoSelection)
			})
		})

		Convey("A blank query is treated as a clear", func() {
			_, err := svc.Dispatch(ctx, selection.Event{Kind: selection.SetQuery, Query: "bet"})
			So(err, ShouldBeNil)
			st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.SetQuery, Query: "   "})
			So(err, ShouldBeNil)
			So(st.Query, ShouldBeEmpty)
			So(st.Filtered, ShouldResemble, []string{"alpha", "beta"})
		})

		Convey("Candidate names are searchable too", func() {
			st, err := svc.Dispatch(ctx, selection.Event{Kind: selection.SetQuery, Query: "chen"})
			So(err, ShouldBeNil)
			So(st.Filtered, ShouldResemble, []string{"beta"})
		})
	})
}

func TestBoundaryFetchedOnce(t *testing.T) {
	Convey("The boundary payload is shared across year loads", t, func() {
		ctx := context.Background()
		ff := newFakeFetcher()
		svc := startService(t, ff)

		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
		So(svc.LoadYear(ctx, "2020"), ShouldBeNil)
		So(ff.count("villages.json"), ShouldEqual, 1)
		So(ff.count("votes-2024.csv"), ShouldEqual, 1)
		So(ff.count("votes-2020.csv"), ShouldEqual, 1)

		Convey("Switching back to a cached year refetches nothing", func() {
			So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
			So(ff.count("votes-2024.csv"), ShouldEqual, 1)
		})
	})
}

func TestAnnotations(t *testing.T) {
	Convey("Given a loaded service", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher())
		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)

		Convey("Saving fills coordinates and name from the dataset", func() {
			svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "A1", Note: "visit"})

			list := svc.ListAnnotations(ctx)
			So(list, ShouldHaveLength, 1)
			So(list[0].Name, ShouldEqual, "NorthEastFirst")
			So(list[0].Lat, ShouldEqual, 23.5)
			So(list[0].Lng, ShouldEqual, 120.5)
			So(list[0].FocusZoom, ShouldEqual, service.FocusZoom)

			Convey("Saving an empty note deletes the annotation", func() {
				svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "A1", Note: "  "})
				So(svc.ListAnnotations(ctx), ShouldBeEmpty)
			})
		})

		Convey("Explicit coordinates are kept", func() {
			svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "B1", Note: "x", Lat: 1, Lng: 2})
			list := svc.ListAnnotations(ctx)
			So(list[0].Lat, ShouldEqual, 1.0)
			So(list[0].Lng, ShouldEqual, 2.0)
		})

		Convey("Deleting a missing key is a no-op", func() {
			svc.DeleteAnnotation(ctx, "nope")
			So(svc.ListAnnotations(ctx), ShouldBeEmpty)
		})

		Convey("Export round-trips through the service", func() {
			svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "A1", Note: "visit"})

			var csvBuf, kmlBuf strings.Builder
			So(svc.ExportAnnotationsCSV(ctx, &csvBuf), ShouldBeNil)
			So(csvBuf.String(), ShouldContainSubstring, "NorthEastFirst")
			So(svc.ExportAnnotationsKML(ctx, &kmlBuf), ShouldBeNil)
			So(kmlBuf.String(), ShouldContainSubstring, "<Placemark>")
		})
	})
}

func TestAnnotationEvents(t *testing.T) {
	Convey("Annotation changes reach subscribers", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher())
		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)

		ch, cancel := svc.Subscribe(ctx)
		defer cancel()

		svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "A1", Note: "visit"})
		change := <-ch
		So(change.Kind, ShouldEqual, repository.ChangeSaved)
		So(change.Annotation.GeoKey, ShouldEqual, "A1")

		svc.DeleteAnnotation(ctx, "A1")
		change = <-ch
		So(change.Kind, ShouldEqual, repository.ChangeDeleted)
	})
}

func TestReferenceWinnersNonFatal(t *testing.T) {
	Convey("A failing reference load never fails the year load", t, func() {
		ctx := context.Background()
		ff := newFakeFetcher()
		ff.fail["votes-2020.csv"] = true
		svc := startService(t, ff, service.WithReferenceYear("2020"))

		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
		So(svc.CurrentYear(ctx), ShouldEqual, "2024")
		So(ff.count("votes-2020.csv"), ShouldEqual, 1)
	})
}

func TestWelcomeSeen(t *testing.T) {
	Convey("The welcome flag flips on first read", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher())

		So(svc.WelcomeSeen(ctx), ShouldBeFalse)
		So(svc.WelcomeSeen(ctx), ShouldBeTrue)
		So(svc.WelcomeSeen(ctx), ShouldBeTrue)
	})
}

func TestGetStats(t *testing.T) {
	Convey("Stats reflect the service state", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeFetcher())
		So(svc.LoadYear(ctx, "2024"), ShouldBeNil)
		svc.SaveAnnotation(ctx, model.Annotation{GeoKey: "A1", Note: "visit"})

		stats := svc.GetStats()
		So(stats["started"], ShouldBeTrue)
		So(stats["currentYear"], ShouldEqual, "2024")
		So(stats["annotations"], ShouldEqual, 1)
		So(stats["loadedYears"], ShouldResemble, []string{"2024"})
	})
}
