package main

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/kerryjj/community-votes-action/internal/config"
	"github.com/kerryjj/community-votes-action/internal/db"
	"github.com/kerryjj/community-votes-action/internal/handlers"
	"github.com/kerryjj/community-votes-action/internal/logging"
	"github.com/kerryjj/community-votes-action/internal/middleware"
	"github.com/kerryjj/community-votes-action/internal/moderation"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logging.Logger.Fatalf("Failed to load config: %v", err)
	}

	logging.Init(cfg.LogFile)

	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	moderator := moderation.New(cfg.ModerationURL)
	h := handlers.New(database, store, tmpl, moderator, cfg.UploadDir)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.RegisterSubmit)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Get("/logout", h.Logout)

	r.Get("/projects", h.ProjectsPage)
	r.Get("/projects/grid", h.ProjectsGrid)
	r.Get("/projects/{id}", h.ProjectDetail)
	r.Post("/projects/{id}/vote", h.VoteToggle)
	r.Post("/projects/{id}/volunteer", h.Volunteer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(store))
		r.Get("/projects/new", h.NewProjectPage)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}/edit", h.EditProjectPage)
		r.Post("/projects/{id}/edit", h.UpdateProject)
		r.Post("/projects/{id}/delete", h.DeleteProject)
	})

	r.NotFound(h.NotFound)

	logging.Logger.Infof("Server starting on http://%s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logging.Logger.Fatalf("Server failed: %v", err)
	}
}
