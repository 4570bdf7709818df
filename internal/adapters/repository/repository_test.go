package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/okian/nbapicks/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
}

func TestSubscriptionIsPaid(t *testing.T) {
	Convey("Given subscriptions", t, func() {
		past := epoch.Add(-time.Hour)
		future := epoch.Add(time.Hour)

		So(repository.Subscription{Active: true}.IsPaid(epoch), ShouldBeTrue)
		So(repository.Subscription{Active: true, ExpiresAt: &future}.IsPaid(epoch), ShouldBeTrue)
		So(repository.Subscription{Active: true, ExpiresAt: &past}.IsPaid(epoch), ShouldBeFalse)
		So(repository.Subscription{Active: false, ExpiresAt: &future}.IsPaid(epoch), ShouldBeFalse)
	})
}

func TestHistoryValidation(t *testing.T) {
	Convey("Given history entries", t, func() {
		ok := repository.HistoryEntry{UserID: "u", Date: "20250301", Payload: json.RawMessage(`{"picks":[]}`)}
		So(ok.Validate(), ShouldBeNil)

		bad := ok
		bad.Date = "2025-03-01"
		So(bad.Validate(), ShouldEqual, repository.ErrInvalidEntry)

		bad = ok
		bad.Payload = json.RawMessage(`[1,2]`)
		So(bad.Validate(), ShouldEqual, repository.ErrInvalidEntry)

		bad = ok
		bad.UserID = ""
		So(bad.Validate(), ShouldEqual, repository.ErrInvalidEntry)
	})

	Convey("ClampLimit bounds requests", t, func() {
		So(repository.ClampLimit(0), ShouldEqual, repository.DefaultHistoryLimit)
		So(repository.ClampLimit(500), ShouldEqual, repository.MaxHistoryLimit)
		So(repository.ClampLimit(7), ShouldEqual, 7)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store", t, func() {
		now := epoch
		s := repository.NewMemoryStore(
			repository.WithClock(func() time.Time { return now }),
			repository.WithIDGenerator(sequence()),
		)

		Convey("Then unknown subscriptions are not found", func() {
			_, err := s.Subscription(ctx, "u")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then upserted subscriptions read back", func() {
			exp := epoch.AddDate(0, 0, 30)
			So(s.UpsertSubscription(ctx, repository.Subscription{UserID: "u", Active: true, ExpiresAt: &exp}), ShouldBeNil)
			got, err := s.Subscription(ctx, "u")
			So(err, ShouldBeNil)
			So(got.IsPaid(epoch), ShouldBeTrue)
			So(got.UpdatedAt, ShouldEqual, epoch)
		})

		Convey("Then usage counts per user and day", func() {
			n, _ := s.IncrementUsage(ctx, "u", "20250301")
			So(n, ShouldEqual, 1)
			n, _ = s.IncrementUsage(ctx, "u", "20250301")
			So(n, ShouldEqual, 2)
			n, _ = s.Usage(ctx, "u", "20250302")
			So(n, ShouldEqual, 0)
			n, _ = s.Usage(ctx, "v", "20250301")
			So(n, ShouldEqual, 0)
		})

		Convey("When saving history over time", func() {
			for i := 0; i < 3; i++ {
				_, err := s.SaveHistory(ctx, repository.HistoryEntry{UserID: "u", Date: "20250301", Payload: json.RawMessage(`{}`)})
				So(err, ShouldBeNil)
				now = now.Add(time.Minute)
			}
			_, _ = s.SaveHistory(ctx, repository.HistoryEntry{UserID: "other", Date: "20250301", Payload: json.RawMessage(`{}`)})

			Convey("Then listing is newest first and scoped to the user", func() {
				list, err := s.ListHistory(ctx, "u", 2)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].ID, ShouldEqual, "h3")
				So(list[1].ID, ShouldEqual, "h2")
			})

			Convey("Then out of range limits are rejected", func() {
				_, err := s.ListHistory(ctx, "u", 0)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
				_, err = s.ListHistory(ctx, "u", repository.MaxHistoryLimit+1)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})

			Convey("Then delete only touches the owner's entries", func() {
				So(s.DeleteHistory(ctx, "other", "h1"), ShouldEqual, repository.ErrNotFound)
				So(s.DeleteHistory(ctx, "u", "h1"), ShouldBeNil)
				So(s.DeleteHistory(ctx, "u", "h1"), ShouldEqual, repository.ErrNotFound)
				list, _ := s.ListHistory(ctx, "u", 10)
				So(len(list), ShouldEqual, 2)
			})
		})

		Convey("Then invalid entries are not stored", func() {
			_, err := s.SaveHistory(ctx, repository.HistoryEntry{UserID: "u", Date: "bad", Payload: json.RawMessage(`{}`)})
			So(err, ShouldEqual, repository.ErrInvalidEntry)
		})
	})
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a postgres store over a mock connection", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		s := repository.NewPostgresStore(db,
			repository.WithClock(func() time.Time { return epoch }),
			repository.WithIDGenerator(sequence()),
		)

		Convey("Migrate runs the schema", func() {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscriptions").WillReturnResult(sqlmock.NewResult(0, 0))
			So(s.Migrate(ctx), ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("Subscription maps missing rows to ErrNotFound", func() {
			mock.ExpectQuery("SELECT user_id, active, expires_at, updated_at FROM subscriptions").
				WithArgs("u").
				WillReturnRows(sqlmock.NewRows([]string{"user_id", "active", "expires_at", "updated_at"}))
			_, err := s.Subscription(ctx, "u")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Subscription scans the expiry", func() {
			exp := epoch.AddDate(0, 0, 30)
			mock.ExpectQuery("FROM subscriptions").
				WithArgs("u").
				WillReturnRows(sqlmock.NewRows([]string{"user_id", "active", "expires_at", "updated_at"}).
					AddRow("u", true, exp, epoch))
			got, err := s.Subscription(ctx, "u")
			So(err, ShouldBeNil)
			So(got.Active, ShouldBeTrue)
			So(got.ExpiresAt, ShouldNotBeNil)
			So(got.ExpiresAt.Equal(exp), ShouldBeTrue)
		})

		Convey("UpsertSubscription writes all columns", func() {
			mock.ExpectExec("INSERT INTO subscriptions").
				WithArgs("u", true, nil, epoch).
				WillReturnResult(sqlmock.NewResult(0, 1))
			So(s.UpsertSubscription(ctx, repository.Subscription{UserID: "u", Active: true}), ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("IncrementUsage returns the new count", func() {
			mock.ExpectQuery("INSERT INTO daily_usage").
				WithArgs("u", "20250301").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			n, err := s.IncrementUsage(ctx, "u", "20250301")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("Usage is zero without a row", func() {
			mock.ExpectQuery("SELECT count FROM daily_usage").
				WithArgs("u", "20250301").
				WillReturnRows(sqlmock.NewRows([]string{"count"}))
			n, err := s.Usage(ctx, "u", "20250301")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("ListHistory scans rows", func() {
			mock.ExpectQuery("FROM pick_history").
				WithArgs("u", 5).
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "payload", "created_at"}).
					AddRow("h9", "u", "20250301", []byte(`{"a":1}`), epoch))
			list, err := s.ListHistory(ctx, "u", 5)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].ID, ShouldEqual, "h9")
			So(string(list[0].Payload), ShouldEqual, `{"a":1}`)
		})

		Convey("ListHistory rejects bad limits without querying", func() {
			_, err := s.ListHistory(ctx, "u", 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("SaveHistory inserts with a generated id", func() {
			mock.ExpectExec("INSERT INTO pick_history").
				WithArgs("h1", "u", "20250301", []byte(`{}`), epoch).
				WillReturnResult(sqlmock.NewResult(0, 1))
			e, err := s.SaveHistory(ctx, repository.HistoryEntry{UserID: "u", Date: "20250301", Payload: json.RawMessage(`{}`)})
			So(err, ShouldBeNil)
			So(e.ID, ShouldEqual, "h1")
			So(e.CreatedAt, ShouldEqual, epoch)
		})

		Convey("DeleteHistory reports missing rows", func() {
			mock.ExpectExec("DELETE FROM pick_history").
				WithArgs("h1", "u").
				WillReturnResult(sqlmock.NewResult(0, 0))
			So(s.DeleteHistory(ctx, "u", "h1"), ShouldEqual, repository.ErrNotFound)
		})

		Convey("Driver errors are wrapped", func() {
			boom := errors.New("boom")
			mock.ExpectQuery("INSERT INTO daily_usage").WillReturnError(boom)
			_, err := s.IncrementUsage(ctx, "u", "20250301")
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}
