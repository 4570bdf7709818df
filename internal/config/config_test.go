package config_test

import (
	"testing"
	"time"

	"github.com/okian/nbapicks/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Timezone, convey.ShouldEqual, "Asia/Seoul")
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.ScheduleProviders, convey.ShouldResemble, []string{"nbaofficial", "espn"})
			convey.So(cfg.OddsMode, convey.ShouldEqual, "best")
			convey.So(cfg.EstDefaultSpreadAbs, convey.ShouldEqual, 2.5)
			convey.So(cfg.EstDefaultTotal, convey.ShouldEqual, 224)
			convey.So(cfg.EstDefaultPrice, convey.ShouldEqual, -110)
			convey.So(cfg.AnalysisConcurrency, convey.ShouldEqual, 4)
			convey.So(cfg.PicksPerType, convey.ShouldEqual, 3)
			convey.So(cfg.EstimateUnmatched, convey.ShouldBeTrue)
			convey.So(cfg.AdminEnabled, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When odds_mode is unknown", func() {
			cfg.OddsMode = "median"
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
		})

		convey.Convey("When the timezone does not exist", func() {
			cfg.Timezone = "Mars/Olympus"
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
		})

		convey.Convey("When the stale ttl is shorter than the fresh ttl", func() {
			cfg.OddsStaleTTL = time.Minute
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
		})

		convey.Convey("When concurrency is zero", func() {
			cfg.AnalysisConcurrency = 0
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
