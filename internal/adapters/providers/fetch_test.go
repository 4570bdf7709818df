package providers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/nbapicks/internal/adapters/providers"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetcher(t *testing.T) {
	Convey("Given a slow upstream", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		Convey("When the per-call timeout elapses", func() {
			f := providers.NewFetcher("slow", providers.WithTimeout(50*time.Millisecond))
			_, err := f.Get(context.Background(), srv.URL)

			Convey("Then the call fails as unavailable", func() {
				So(errors.Is(err, providers.ErrUpstreamUnavailable), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})

	Convey("Given an upstream returning a long error page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") == "" {
				w.WriteHeader(http.StatusTeapot)
				return
			}
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
		}))
		defer srv.Close()

		_, err := providers.NewFetcher("big").Get(context.Background(), srv.URL)
		var ue *providers.UpstreamError
		So(errors.As(err, &ue), ShouldBeTrue)
		So(ue.Status, ShouldEqual, http.StatusBadGateway)
		So(len(ue.Excerpt), ShouldEqual, 200)
	})

	Convey("Given a body that is not JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()

		var out map[string]any
		_, err := providers.NewFetcher("html").GetJSON(context.Background(), srv.URL, &out)
		So(errors.Is(err, providers.ErrDecode), ShouldBeTrue)
		So(errors.Is(err, providers.ErrUpstreamUnavailable), ShouldBeFalse)
	})
}
