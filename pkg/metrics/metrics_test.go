package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level helpers", t, func() {
		Convey("Load pipeline metrics record without panic", func() {
			So(func() {
				RecordLoad("success")
				RecordLoad("schema_error")
				RecordLoad("fetch_error")
				RecordLoadDuration(0.25)
				RecordRowsParsed(5000)
				RecordRowsDropped(3)
				UpdateLoadedYears(2)
				UpdateEntityCounts(7000, 73)
				UpdateBoundaryCount(7000)
			}, ShouldNotPanic)
		})

		Convey("Annotation metrics record without panic", func() {
			So(func() {
				RecordAnnotationOp("save")
				RecordAnnotationOp("delete")
				UpdateAnnotationCount(4)
			}, ShouldNotPanic)
		})

		Convey("HTTP metrics record without panic", func() {
			So(func() {
				RecordHTTPRequest("/villages", "GET", "200")
				RecordHTTPRequest("/load", "POST", "422")
				RecordHTTPRequestDuration("/villages", "GET", "200", 12.5)
			}, ShouldNotPanic)
		})

		Convey("Edge values record without panic", func() {
			So(func() {
				RecordRowsParsed(0)
				UpdateLoadedYears(0)
				UpdateEntityCounts(0, 0)
				RecordHTTPRequest("", "", "")
				RecordHTTPRequestDuration("", "", "", 0)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The custom registry gathers the service metrics", t, func() {
		RecordLoad("success")
		RecordHTTPRequest("/villages", "GET", "200")

		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		So(names["election_map_loads_total"], ShouldBeTrue)
		So(names["election_map_rows_parsed_total"], ShouldBeTrue)
		So(names["election_map_http_requests_total"], ShouldBeTrue)
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Concurrent recording does not panic", t, func() {
		done := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordRowsParsed(1)
					UpdateAnnotationCount(j)
					RecordHTTPRequest("/villages", "GET", "200")
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}
		So(true, ShouldBeTrue)
	})
}
