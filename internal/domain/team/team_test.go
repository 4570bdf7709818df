package team_test

import (
	"testing"

	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given NBA CDN team records", t, func() {
		r := extract.Record{"teamId": 1610612738.0, "teamTricode": "bos", "teamCity": "Boston", "teamName": "Celtics"}
		got := team.Resolve(r)

		Convey("Then id, tricode and full name resolve", func() {
			So(got.ID, ShouldEqual, "1610612738")
			So(got.Abbreviation, ShouldEqual, "BOS")
			So(got.DisplayName, ShouldEqual, "Boston Celtics")
			So(got.LogoRef, ShouldEqual, "https://cdn.nba.com/logos/nba/1610612738/global/L/logo.svg")
		})
	})

	Convey("Given an ESPN team record", t, func() {
		got := team.Resolve(extract.Record{"id": "2", "abbreviation": "GS", "displayName": "Golden State Warriors"})
		So(got.ID, ShouldEqual, "2")
		So(got.DisplayName, ShouldEqual, "Golden State Warriors")
		So(got.LogoRef, ShouldBeEmpty)
		So(team.MarketName(got), ShouldEqual, "Golden State Warriors")
	})

	Convey("Given only an abbreviation", t, func() {
		Convey("When it is a known tricode", func() {
			got := team.Resolve(extract.Record{"triCode": "mia"})
			So(got.DisplayName, ShouldEqual, "Miami Heat")
		})
		Convey("When it is unknown", func() {
			got := team.Resolve(extract.Record{"abbr": "xyz"})
			So(got.DisplayName, ShouldEqual, "XYZ")
		})
	})

	Convey("Given nothing usable", t, func() {
		So(team.Resolve(extract.Record{}).DisplayName, ShouldEqual, team.Placeholder)
		So(team.Resolve(nil).DisplayName, ShouldEqual, team.Placeholder)
	})

	Convey("Given the same payload twice", t, func() {
		r := extract.Record{"teamId": "1610612748", "teamTricode": "MIA"}
		So(team.Resolve(r), ShouldResemble, team.Resolve(r))
	})
}

func TestNameTables(t *testing.T) {
	Convey("Given the tricode table", t, func() {
		So(team.FullName("LAL"), ShouldEqual, "Los Angeles Lakers")
		So(team.FullName("wsh"), ShouldEqual, "Washington Wizards")
		So(team.FullName("???"), ShouldBeEmpty)
		So(team.Tricode("Philadelphia 76ers"), ShouldEqual, "PHI")
		So(team.MarketName(model.Team{DisplayName: "Team World"}), ShouldEqual, "Team World")
	})
}

func TestSharedIdentity(t *testing.T) {
	Convey("Given one franchise from a schedule feed and an odds feed", t, func() {
		scheduled := team.Resolve(extract.Record{"id": "13", "abbreviation": "LAL", "displayName": "LA Lakers"})
		quoted := team.FromMarketName("Los Angeles Lakers")

		Convey("Then both resolve to the same identity", func() {
			So(quoted.Abbreviation, ShouldEqual, "LAL")
			So(team.Key(scheduled), ShouldEqual, "LAL")
			So(team.Key(quoted), ShouldEqual, team.Key(scheduled))
		})

		Convey("Then punctuation variants of the name agree", func() {
			So(team.Tricode("L.A. Lakers"), ShouldEqual, "LAL")
			So(team.NameKey("la lakers"), ShouldEqual, team.NameKey("Los Angeles Lakers"))
		})
	})

	Convey("Given a team outside the league table", t, func() {
		quoted := team.FromMarketName("Team World")
		So(quoted.Abbreviation, ShouldBeEmpty)
		So(team.Key(quoted), ShouldEqual, "team world")
		So(team.Key(model.Team{DisplayName: "TEAM  WORLD."}), ShouldEqual, "team world")
	})
}
