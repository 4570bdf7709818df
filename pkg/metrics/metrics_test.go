package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the configured names", func() {
				So(manager, ShouldNotBeNil)
				manager.picksProduced.WithLabelValues("ML").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_engine_x_candidate_picks_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := gathered("picks_engine_candidate_picks_total", "TOTAL")
			RecordCandidatePick("TOTAL")
			RecordUpstreamFetch("oddsapi", "ok", 120*time.Millisecond)
			RecordCacheLookup("odds", "cache")
			RecordMatch("matched")
			RecordEstimatedLine("league")
			RecordAnalysisLatency(40 * time.Millisecond)
			RecordAnalysisError()
			RecordRecommendations("ok")
			UpdateLineHistorySize(7)
			AddInFlight(1)
			AddInFlight(-1)
			RecordEntitlementDenied("daily_limit")

			Convey("Then counters and gauges move", func() {
				So(gathered("picks_engine_candidate_picks_total", "TOTAL"), ShouldEqual, before+1)
				So(gathered("picks_engine_line_history_teams", ""), ShouldEqual, 7)
				So(gathered("picks_engine_analysis_in_flight", ""), ShouldEqual, 0)
			})
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("recommendations", "GET", "200")
				RecordHTTPRequestDuration("recommendations", "GET", "200", 12)
				RecordErrorByEndpoint("pick", "GET", "not_found")
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			RecordMatch("unmatched")
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "picks_engine_odds_match_total")
		})
	})
}

// gathered reads a counter or gauge value from the global registry. label
// filters on any label value; empty matches the first series.
func gathered(name, label string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			match := label == ""
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					match = true
				}
			}
			if !match {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}
