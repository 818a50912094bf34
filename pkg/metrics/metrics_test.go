package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "staffnote")
				So(manager.subsystem, ShouldEqual, "api")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the metric names should carry the namespace", func() {
				manager.employeesCreated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_employees_created_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When a slow upstream call is observed with default buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.upstreamLatency.WithLabelValues("genai").Observe(1500)

			Convey("Then it lands below the top bucket", func() {
				buckets := manager.histogramBuckets
				So(buckets[0], ShouldEqual, 1)
				So(buckets[len(buckets)-1], ShouldEqual, 131072)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var below2048 uint64
				for _, f := range families {
					if f.GetName() != "staffnote_api_upstream_latency_milliseconds" {
						continue
					}
					for _, b := range f.GetMetric()[0].GetHistogram().GetBucket() {
						if b.GetUpperBound() == 2048 {
							below2048 = b.GetCumulativeCount()
						}
					}
				}
				So(below2048, ShouldEqual, 1)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "staffnote")
				So(manager.subsystem, ShouldEqual, "api")
				So(manager.histogramBuckets, ShouldResemble, LatencyBuckets())
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording business metrics", func() {
			before := testutil.ToFloat64(globalManager.employeesCreated)
			RecordEmployeeCreated()
			RecordEventCreated("1on1")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.employeesCreated), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.eventsCreated.WithLabelValues("1on1")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording every metric type", func() {
			So(func() {
				RecordEmployeeConflict()
				RecordMappingUpserted()
				RecordSummaryGenerated()
				RecordSummarySaved()
				RecordSummaryFailure("safety_blocked")
				RecordAuthFailure("missing")
				RecordHTTPRequest("/employees/{id}", "GET", "200")
				RecordHTTPRequestDuration("/employees/{id}", "GET", "200", 12.5)
				RecordErrorByEndpoint("/employees/{id}", "GET", "not_found")
				RecordStoreOperation("employees", "get", "ok", 3)
				RecordUpstreamCall("genai", "ok", 800)
				RecordNotificationSkipped()
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then only service metrics are exported", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "staffnote_"), ShouldBeTrue)
				}
			})
		})
	})
}
