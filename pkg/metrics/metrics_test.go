package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricsEnabledOpt := WithMetricsEnabled(true)
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording fetch metrics", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					RecordFetch("user_stats")
					RecordFetchFailure("user_stats")
					RecordFetchRetry()
					RecordAuthFailure()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording pipeline metrics", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					RecordDaySucceeded()
					RecordDayFailed()
					RecordNormalized("user_stats", 5)
					RecordNormalized("user_stats", 0)
					AddCSVRows(10)
					RecordReportWritten()
					RecordAggregateFileSkipped()
					SetUsersAggregated(3)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When gathering metrics after recording", func() {
			RecordFetch("tenant_stats")
			families, err := Registry().Gather()

			Convey("Then registered metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)

				var found bool
				for _, fam := range families {
					if fam.GetName() == "dashport_pipeline_fetch_requests_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}
