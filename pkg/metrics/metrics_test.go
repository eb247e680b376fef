package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is created with defaults", func() {
			m := NewManager(WithPrometheusRegistry(reg))

			Convey("Then it uses the crease namespace", func() {
				So(m.namespace, ShouldEqual, "crease")
				So(m.subsystem, ShouldEqual, "analysis")
				So(m.enabled, ShouldBeTrue)
			})

			Convey("Then its collectors are registered", func() {
				m.framesDuplicate.Inc()
				families, err := reg.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "crease_analysis_frames_duplicate_total")
			})
		})

		Convey("When options override the defaults", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace("nets"),
				WithSubsystem("coach"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"ground": "lords"}),
				WithMetricsEnabled(false),
			)

			Convey("Then the manager reflects them", func() {
				So(m.namespace, ShouldEqual, "nets")
				So(m.subsystem, ShouldEqual, "coach")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 2})
				So(m.constLabels["ground"], ShouldEqual, "lords")
				So(m.enabled, ShouldBeFalse)
			})
		})

		Convey("When options are given empty values", func() {
			m := NewManager(WithPrometheusRegistry(reg), WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil))

			Convey("Then the defaults are kept", func() {
				So(m.namespace, ShouldEqual, "crease")
				So(m.subsystem, ShouldEqual, "analysis")
				So(len(m.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestPackageRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		SetEnabled(true)

		Convey("When frames are accepted and rejected", func() {
			before := testutil.ToFloat64(globalManager.framesAccepted.WithLabelValues("batting"))
			dupBefore := testutil.ToFloat64(globalManager.framesDuplicate)

			RecordFrameAccepted("batting")
			RecordFrameAccepted("batting")
			RecordFrameDuplicate()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.framesAccepted.WithLabelValues("batting")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.framesDuplicate), ShouldEqual, dupBefore+1)
			})
		})

		Convey("When gauges are set", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.07)
			UpdateActiveSessions(3)
			UpdateLeaderboardPlayers("bowling", 12)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100.0)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.07)
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 3.0)
				So(testutil.ToFloat64(globalManager.leaderboardPlayers.WithLabelValues("bowling")), ShouldEqual, 12.0)
			})
		})

		Convey("When an analysis and an HTTP request are recorded", func() {
			RecordAnalysis("shot", "ok", 3*time.Millisecond)
			RecordHTTPRequest("/analyze", "POST", "200", time.Millisecond)

			Convey("Then both appear in the registry output", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)

				var joined strings.Builder
				for _, f := range families {
					joined.WriteString(f.GetName())
					joined.WriteString("\n")
				}
				So(joined.String(), ShouldContainSubstring, "crease_analysis_analyses_total")
				So(joined.String(), ShouldContainSubstring, "crease_analysis_http_requests_total")
			})
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			Reset(func() { SetEnabled(true) })

			before := testutil.ToFloat64(globalManager.workerErrors)
			RecordWorkerError()

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(globalManager.workerErrors), ShouldEqual, before)
			})
		})
	})
}
