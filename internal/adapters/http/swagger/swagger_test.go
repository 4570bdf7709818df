package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbapicks/internal/adapters/http/swagger"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the documentation routes", t, func() {
		r := chi.NewRouter()
		swagger.Register(r)

		convey.Convey("Then it serves the OpenAPI document", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("Then it serves the ReDoc page", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
		})
	})

	convey.Convey("Given a nil router", t, func() {
		convey.So(func() { swagger.Register(nil) }, convey.ShouldPanic)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded document", t, func() {
		doc, err := yaml.Parser().Unmarshal(swagger.OpenAPI)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every served route is described", func() {
			paths, ok := doc["paths"].(map[string]interface{})
			convey.So(ok, convey.ShouldBeTrue)
			for _, p := range []string{
				"/healthz", "/metrics", "/stats",
				"/api/games", "/api/odds", "/api/last10",
				"/api/recommendations", "/api/top3", "/api/pick",
				"/api/subscription/status", "/api/admin/subscription/activate", "/api/history",
			} {
				convey.So(paths, convey.ShouldContainKey, p)
			}
		})
	})
}
