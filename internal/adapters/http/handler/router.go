package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/core/todo"
	"github.com/sirupsen/logrus"
)

// RouterDeps はルーターが必要とする依存です。Feed が nil の場合 /api/employees/feed は登録しません。
type RouterDeps struct {
	OrgChart       orgchart.UseCase
	Todos          todo.UseCase
	Feed           http.Handler
	AllowedOrigins []string
	Logger         logrus.FieldLogger
	Now            func() time.Time
}

// NewRouter は /api 配下の HTTP ルーティングを構築します。
func NewRouter(d RouterDeps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	if d.Logger != nil {
		mux.Use(requestLogger(d.Logger))
	}
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler(d.Now))

		if d.OrgChart != nil {
			eh := NewEmployeeHandler(d.OrgChart)
			api.Route("/employees", func(sr chi.Router) {
				sr.Get("/", eh.List)
				sr.Put("/", eh.Replace)
				sr.Post("/", eh.Create)
				sr.Get("/rows", eh.Rows)
				sr.Post("/bulk-delete", eh.BulkDelete)
				if d.Feed != nil {
					sr.Handle("/feed", d.Feed)
				}
				sr.Patch("/{employeeID}", eh.Update)
				sr.Delete("/{employeeID}", eh.Delete)
			})
		}

		api.Post("/finance/summary", FinanceSummary)

		if d.Todos != nil {
			th := NewTodoHandler(d.Todos)
			api.Route("/todos", func(sr chi.Router) {
				sr.Get("/", th.List)
				sr.Post("/", th.Create)
				sr.Patch("/{todoID}", th.Toggle)
				sr.Delete("/{todoID}", th.Delete)
			})
		}
	})

	return mux
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("http request")
		})
	}
}
