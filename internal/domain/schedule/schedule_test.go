package schedule_test

import (
	"testing"
	"time"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/schedule"
	"github.com/okian/nbapicks/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var day = calendar.Date{Year: 2025, Month: time.January, Day: 1}

func TestGameIDRuleOrder(t *testing.T) {
	Convey("Given the game id rule", t, func() {
		So(schedule.GameIDRule.Paths, ShouldResemble, []string{
			"gameId", "id", "game_id", "gameCode", "gamecode", "gameCodeId", "gameCodeID", "gameKey", "game_key",
		})

		Convey("When only a late alias is present", func() {
			g, ok := schedule.NormalizeOne(extract.Record{"gameKey": "K1", "game_key": "K2"}, day, "test")
			So(ok, ShouldBeTrue)
			So(g.GameID, ShouldEqual, "K1")
		})

		Convey("When the id is numeric", func() {
			g, ok := schedule.NormalizeOne(extract.Record{"id": 401704823.0}, day, "test")
			So(ok, ShouldBeTrue)
			So(g.GameID, ShouldEqual, "401704823")
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a mixed batch of NBA CDN shaped records", t, func() {
		records := []extract.Record{
			{
				"gameId":          "0022400500",
				"gameStatus":      1.0,
				"gameStatusText":  "7:30 pm ET",
				"gameDateTimeUTC": "2025-01-01T00:30:00Z",
				"homeTeam":        map[string]any{"teamId": 1610612738.0, "teamTricode": "BOS", "teamCity": "Boston", "teamName": "Celtics"},
				"awayTeam":        map[string]any{"teamId": 1610612748.0, "teamTricode": "MIA", "teamCity": "Miami", "teamName": "Heat"},
			},
			{"gameId": "", "homeTeam": map[string]any{"teamTricode": "LAL"}},
			{
				"gameId":         "0022400501",
				"gameStatus":     3.0,
				"gameStatusText": "Final",
				"homeTricode":    "LAL",
				"awayTricode":    "DEN",
			},
		}
		games := schedule.Normalize(records, day, "nbaofficial")

		Convey("Then records without an id are dropped and order is kept", func() {
			So(len(games), ShouldEqual, 2)
			So(games[0].GameID, ShouldEqual, "0022400500")
			So(games[1].GameID, ShouldEqual, "0022400501")
		})

		Convey("Then the first game is canonical and analyzable", func() {
			g := games[0]
			So(g.Status, ShouldEqual, types.StatusScheduled)
			So(g.Analyzable, ShouldBeTrue)
			So(g.StartTimeUTC, ShouldNotBeNil)
			So(g.StartTimeUTC.Equal(time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)), ShouldBeTrue)
			So(g.Home.DisplayName, ShouldEqual, "Boston Celtics")
			So(g.Away.Abbreviation, ShouldEqual, "MIA")
			So(g.Provider, ShouldEqual, "nbaofficial")
		})

		Convey("Then game-level team fields are used when objects are missing", func() {
			g := games[1]
			So(g.Home.DisplayName, ShouldEqual, "Los Angeles Lakers")
			So(g.Away.DisplayName, ShouldEqual, "Denver Nuggets")
			So(g.Status, ShouldEqual, types.StatusFinal)
			So(g.Analyzable, ShouldBeFalse)
			So(g.StartTimeUTC, ShouldBeNil)
		})

		Convey("Then Analyzable filters the final game", func() {
			So(len(schedule.Analyzable(games)), ShouldEqual, 1)
			_, found := schedule.Find(games, "0022400501")
			So(found, ShouldBeTrue)
		})
	})
}

func TestIsAnalyzable(t *testing.T) {
	Convey("Given status strings", t, func() {
		Convey("Then blocked terms are not analyzable regardless of case", func() {
			for _, s := range []string{"Final", "FINAL/OT", "Cancelled", "canceled", "Postponed", "PPD", "Suspended", "Abandoned", "Forfeit", "Completed", "STATUS_FINAL"} {
				So(schedule.IsAnalyzable(s), ShouldBeFalse)
			}
		})

		Convey("Then unknown or untranslated statuses stay analyzable", func() {
			for _, s := range []string{"", "7:30 pm ET", "Q3 5:12", "Halftime", "경기 예정", "Delayed"} {
				So(schedule.IsAnalyzable(s), ShouldBeTrue)
			}
		})
	})

	Convey("Given text-only statuses", t, func() {
		So(schedule.ClassifyText("Postponed"), ShouldEqual, types.StatusPostponed)
		So(schedule.ClassifyText("Halftime"), ShouldEqual, types.StatusInProgress)
		So(schedule.ClassifyText("STATUS_SCHEDULED"), ShouldEqual, types.StatusScheduled)
		So(schedule.ClassifyText("Delayed"), ShouldEqual, types.StatusUnknown)
	})
}
