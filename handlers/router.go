package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(CSRFMiddleware)
	mux.Use(SessionMiddleware(app))

	// Proof images are only served from here when using local storage; with
	// S3 the stored paths point at the bucket directly.
	if app.UploadDir() != "" {
		mux.Handle("/proofs/*", http.StripPrefix("/proofs/", http.FileServer(http.Dir(app.UploadDir()))))
	}

	// Player API
	mux.Post("/api/login", MakeHandler(app, HandleLogin))
	mux.Post("/api/logout", MakeHandler(app, HandleLogout))
	mux.Get("/api/tasks", MakeHandler(app, HandleTasks))
	mux.Get("/api/board", MakeHandler(app, HandleBoard))
	mux.Post("/api/submit", MakeHandler(app, HandleSubmit))
	mux.Get("/api/submissions", MakeHandler(app, HandleMySubmissions))
	mux.Get("/ws", MakeHandler(app, HandleWS))

	// Moderation handlers
	mux.Route("/mod", func(r chi.Router) {
		r.Use(RequireModerator)
		r.Get("/queue", MakeHandler(app, HandleQueue))
		r.Get("/submissions", MakeHandler(app, HandleSubmissionHistory))
		r.Post("/decide", MakeHandler(app, HandleDecide))
		r.Get("/log", MakeHandler(app, HandleModLog))
		r.Post("/backup-db", MakeHandler(app, HandleDatabaseBackup))
	})

	return mux
}
