package nbaofficial_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/adapters/providers/nbaofficial"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	. "github.com/smartystreets/goconvey/convey"
)

const schedule = `{"leagueSchedule":{"gameDates":[
 {"gameDate":"01/14/2025 00:00:00","games":[
   {"gameId":"0022400550","gameDateTimeUTC":"2025-01-15T00:30:00Z","gameStatus":1,"gameStatusText":"7:30 pm ET",
    "homeTeam":{"teamId":1610612738,"teamTricode":"BOS","teamCity":"Boston","teamName":"Celtics"},
    "awayTeam":{"teamId":1610612748,"teamTricode":"MIA","teamCity":"Miami","teamName":"Heat"}}
 ]},
 {"gameDate":"2025-01-16T00:00:00Z","gameDateEst":"2025-01-16T00:00:00Z","games":[
   {"gameId":"0022400560","gameDateTimeUTC":"2025-01-16T03:00:00Z"}
 ]}
]}}`

func serve(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func ids(rs []extract.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = extract.AsString(r["gameId"])
	}
	return out
}

func TestGamesForDate(t *testing.T) {
	seoul, _ := time.LoadLocation("Asia/Seoul")
	ctx := context.Background()

	Convey("Given the league schedule", t, func() {
		srv := serve(schedule, http.StatusOK)
		defer srv.Close()
		c := nbaofficial.New(srv.URL, seoul)
		So(c.Name(), ShouldEqual, nbaofficial.Name)

		Convey("When the date matches a gameDate bucket in US form", func() {
			got, err := c.GamesForDate(ctx, calendar.Date{Year: 2025, Month: 1, Day: 14})
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"0022400550"})
		})

		Convey("When the date matches an ISO bucket", func() {
			got, err := c.GamesForDate(ctx, calendar.Date{Year: 2025, Month: 1, Day: 16})
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"0022400560"})
		})

		Convey("When only the local start time matches", func() {
			got, err := c.GamesForDate(ctx, calendar.Date{Year: 2025, Month: 1, Day: 15})
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"0022400550"})
		})

		Convey("When nothing is scheduled", func() {
			got, err := c.GamesForDate(ctx, calendar.Date{Year: 2025, Month: 3, Day: 1})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given an upstream failure", t, func() {
		srv := serve(`<html>maintenance</html>`, http.StatusServiceUnavailable)
		defer srv.Close()
		_, err := nbaofficial.New(srv.URL, seoul).GamesForDate(ctx, calendar.Date{Year: 2025, Month: 1, Day: 14})

		Convey("Then an upstream error with an excerpt is returned", func() {
			So(errors.Is(err, providers.ErrUpstreamUnavailable), ShouldBeTrue)
			var ue *providers.UpstreamError
			So(errors.As(err, &ue), ShouldBeTrue)
			So(ue.Status, ShouldEqual, http.StatusServiceUnavailable)
			So(ue.Excerpt, ShouldContainSubstring, "maintenance")
		})
	})
}
