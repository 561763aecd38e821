package main

import (
	"context"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/tienyuan-huang/election/internal/adapters/http/api"
	app "github.com/tienyuan-huang/election/internal/app"
	"github.com/tienyuan-huang/election/internal/config"
	"github.com/tienyuan-huang/election/pkg/logger"
	"github.com/tienyuan-huang/election/pkg/metrics"
)

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ELECTION_ADDR", ":8080")
			_ = os.Setenv("ELECTION_CLASSIFIER_POLICY", "margin")
			defer func() {
				_ = os.Unsetenv("ELECTION_ADDR")
				_ = os.Unsetenv("ELECTION_CLASSIFIER_POLICY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ClassifierPolicy, convey.ShouldEqual, "margin")
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithGeoJoinKey("VILLCODE"),
					app.WithTieBreak("name"),
					app.WithInitialSelection("eager"),
					app.WithPrefetch(true, 4),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			if err := logger.Init(); err != nil {
				t.Fatal(err)
			}
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}
