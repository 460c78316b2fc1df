package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/kerryjj/community-votes-action/internal/auth"
	"github.com/kerryjj/community-votes-action/internal/db"
	"github.com/kerryjj/community-votes-action/internal/forms"
	"github.com/kerryjj/community-votes-action/internal/listing"
	"github.com/kerryjj/community-votes-action/internal/logging"
	"github.com/kerryjj/community-votes-action/internal/models"
	"github.com/kerryjj/community-votes-action/internal/moderation"
	"github.com/kerryjj/community-votes-action/internal/storage"
)

// Store is the persistence surface the handlers depend on,
// implemented by *db.Database.
type Store interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllProjects(ctx context.Context) ([]models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	SetProjectImage(ctx context.Context, id, imageURL string) error
	DeleteProject(ctx context.Context, id string) error
	ToggleVote(ctx context.Context, projectID, userID string) (bool, int, error)
	HasUserVoted(ctx context.Context, projectID, userID string) (bool, error)
	AddVolunteer(ctx context.Context, projectID, userID string) error
	HasVolunteered(ctx context.Context, projectID, userID string) (bool, error)
	GetStats(ctx context.Context) (*models.Stats, error)
}

type Handler struct {
	Store     Store
	Sessions  *sessions.CookieStore
	Templates *template.Template
	Moderator *moderation.Checker
	UploadDir string
}

func New(store Store, sess *sessions.CookieStore, tmpl *template.Template, mod *moderation.Checker, uploadDir string) *Handler {
	return &Handler{
		Store:     store,
		Sessions:  sess,
		Templates: tmpl,
		Moderator: mod,
		UploadDir: uploadDir,
	}
}

// userID returns the signed-in user's id, or "" when no session exists.
func (h *Handler) userID(r *http.Request) string {
	session, _ := h.Sessions.Get(r, "session")
	if id, ok := session.Values["user_id"].(string); ok {
		return id
	}
	return ""
}

// redirect navigates both plain and HTMX requests. HTMX swaps fragments
// in place, so it gets a header instead of a 3xx.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// loginTarget builds the sign-in URL carrying the path to return to.
func loginTarget(returnTo string) string {
	return "/login?redirect=" + url.QueryEscape(returnTo)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	session, _ := h.Sessions.Get(r, "session")
	session.AddFlash(msg)
	session.Save(r, w)
}

func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := h.Sessions.Get(r, "session")
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["LoggedIn"] = h.userID(r) != ""
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = h.takeFlashes(w, r)
	}
	if err := h.Templates.ExecuteTemplate(w, name, data); err != nil {
		logging.Logger.WithField("template", name).WithField("error", err).Error("render failed")
	}
}

// inlineError retargets an HTMX response at the form's error slot.
func inlineError(w http.ResponseWriter, msg string) {
	w.Header().Set("HX-Retarget", "#form-errors")
	w.Header().Set("HX-Reswap", "innerHTML")
	fmt.Fprintf(w, `<div class="text-red-600 text-sm">%s</div>`, template.HTMLEscapeString(msg))
}

func inlineFieldErrors(w http.ResponseWriter, errs forms.Errors) {
	w.Header().Set("HX-Retarget", "#form-errors")
	w.Header().Set("HX-Reswap", "innerHTML")
	var b strings.Builder
	b.WriteString(`<ul class="text-red-600 text-sm space-y-1">`)
	for _, field := range []string{"title", "description", "location", "type"} {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(&b, "<li>%s</li>", template.HTMLEscapeString(msg))
		}
	}
	b.WriteString("</ul>")
	w.Write([]byte(b.String()))
}

func allowedTypeStrings() []string {
	types := models.AllTypes()
	raw := make([]string, len(types))
	for i, t := range types {
		raw[i] = string(t)
	}
	return raw
}

// --- pages ---

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Store.GetStats(ctx)
	if err != nil {
		logging.Logger.WithField("error", err).Error("failed to load stats")
		stats = &models.Stats{}
	}

	all, err := h.Store.GetAllProjects(ctx)
	if err != nil {
		logging.Logger.WithField("error", err).Error("failed to load projects")
		all = nil
	}

	h.render(w, r, "index.html", map[string]interface{}{
		"Stats":    stats,
		"Featured": listing.Featured(all, 3),
	})
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", nil)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "not_found.html", nil)
}

// --- auth ---

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", map[string]interface{}{
		"Redirect": safeRedirect(r.URL.Query().Get("redirect")),
	})
}

func (h *Handler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if email == "" {
		inlineError(w, "Email is required")
		return
	}
	if password != confirm {
		inlineError(w, "Passwords do not match")
		return
	}
	if err := auth.ValidatePassword(password); err != nil {
		inlineError(w, err.Error())
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logging.Logger.WithField("error", err).Error("password hash failed")
		inlineError(w, "Something went wrong. Please try again.")
		return
	}

	user, err := h.Store.CreateUser(r.Context(), email, displayName, hash)
	if err != nil {
		inlineError(w, "That email is already registered")
		return
	}

	h.signIn(w, r, user)
	redirect(w, r, safeRedirect(r.FormValue("redirect")))
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", map[string]interface{}{
		"Redirect": safeRedirect(r.URL.Query().Get("redirect")),
	})
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		inlineError(w, "Invalid email or password")
		return
	}
	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		inlineError(w, "Invalid email or password")
		return
	}

	h.signIn(w, r, user)
	redirect(w, r, safeRedirect(r.FormValue("redirect")))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, _ := h.Sessions.Get(r, "session")
	session.Values["user_id"] = user.ID
	session.Values["email"] = user.Email
	session.Save(r, w)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Sessions.Get(r, "session")
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect keeps post-login navigation on this site.
func safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return "/"
}

// --- listing ---

func (h *Handler) listingQuery(r *http.Request) listing.Query {
	return listing.Query{
		Search: r.URL.Query().Get("q"),
		Type:   r.URL.Query().Get("type"),
		Sort:   listing.ParseSort(r.URL.Query().Get("sort")),
	}
}

func (h *Handler) ProjectsPage(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.GetAllProjects(r.Context())
	if err != nil {
		logging.Logger.WithField("error", err).Error("failed to load projects")
		h.flash(w, r, "Failed to load projects. Please try again.")
		all = nil
	}

	q := h.listingQuery(r)
	h.render(w, r, "projects.html", map[string]interface{}{
		"Projects": q.Apply(all),
		"Query":    q,
		"NextSort": q.Sort.Toggle(),
		"Types":    models.AllTypes(),
	})
}

// ProjectsGrid re-renders just the results grid; the search input,
// filter select and sort button target it on every change.
func (h *Handler) ProjectsGrid(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.GetAllProjects(r.Context())
	if err != nil {
		logging.Logger.WithField("error", err).Error("failed to load projects")
		fmt.Fprint(w, `<p class="text-red-600">Failed to load projects. Please try again.</p>`)
		return
	}

	q := h.listingQuery(r)
	if err := h.Templates.ExecuteTemplate(w, "project_grid", map[string]interface{}{
		"Projects": q.Apply(all),
	}); err != nil {
		logging.Logger.WithField("error", err).Error("render failed")
	}
}

// --- detail ---

func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "id")

	project, err := h.Store.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		logging.Logger.WithField("error", err).Error("failed to load project")
		h.flash(w, r, "Failed to load the project. Please try again.")
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}

	userID := h.userID(r)
	hasVoted := false
	hasVolunteered := false
	if userID != "" {
		hasVoted, _ = h.Store.HasUserVoted(ctx, projectID, userID)
		hasVolunteered, _ = h.Store.HasVolunteered(ctx, projectID, userID)
	}

	creatorName := ""
	if project.CreatorID != "" {
		if creator, err := h.Store.GetUserByID(ctx, project.CreatorID); err == nil {
			creatorName = creator.DisplayName
			if creatorName == "" {
				creatorName = creator.Email
			}
		}
	}

	h.render(w, r, "project_detail.html", map[string]interface{}{
		"Project":        project,
		"CreatorName":    creatorName,
		"HasVoted":       hasVoted,
		"HasVolunteered": hasVolunteered,
		"IsCreator":      userID != "" && userID == project.CreatorID,
	})
}

// --- vote & volunteer ---

// voteButton is the HTMX fragment swapped in after a toggle.
func voteButton(projectID string, votes int, hasVoted bool) string {
	style := "border border-gray-300 text-gray-700 hover:bg-gray-50"
	if hasVoted {
		style = "bg-purple-600 text-white hover:bg-purple-700"
	}
	return fmt.Sprintf(
		`<button id="vote-button" hx-post="/projects/%s/vote" hx-swap="outerHTML" class="px-4 py-2 rounded-md %s">👍 %d Votes</button>`,
		template.HTMLEscapeString(projectID), style, votes,
	)
}

func (h *Handler) VoteToggle(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	userID := h.userID(r)
	if userID == "" {
		redirect(w, r, loginTarget("/projects/"+projectID))
		return
	}

	voted, count, err := h.Store.ToggleVote(r.Context(), projectID, userID)
	if err != nil {
		logging.Logger.WithField("project", projectID).WithField("error", err).Error("vote toggle failed")
		w.Header().Set("HX-Retarget", "#vote-error")
		w.Header().Set("HX-Reswap", "innerHTML")
		fmt.Fprint(w, `<div class="text-red-600 text-sm">Failed to update vote. Please try again.</div>`)
		return
	}

	fmt.Fprint(w, voteButton(projectID, count, voted))
}

func (h *Handler) Volunteer(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	userID := h.userID(r)
	if userID == "" {
		redirect(w, r, loginTarget("/projects/"+projectID))
		return
	}

	if err := h.Store.AddVolunteer(r.Context(), projectID, userID); err != nil {
		logging.Logger.WithField("project", projectID).WithField("error", err).Error("volunteer failed")
		fmt.Fprint(w, `<div class="text-red-600 text-sm">Something went wrong. Please try again.</div>`)
		return
	}

	fmt.Fprint(w, `<div class="text-green-700 text-sm">Thanks for volunteering! We'll be in touch with details.</div>`)
}

// --- create / edit / delete ---

func (h *Handler) NewProjectPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "project_new.html", map[string]interface{}{
		"Types": models.AllTypes(),
	})
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := h.userID(r)
	if userID == "" {
		redirect(w, r, loginTarget("/projects/new"))
		return
	}

	r.ParseMultipartForm(10 << 20)

	values := map[string]string{
		"title":       r.FormValue("title"),
		"description": r.FormValue("description"),
		"location":    r.FormValue("location"),
		"type":        r.FormValue("type"),
	}
	if errs := forms.ProjectSchema(allowedTypeStrings()).Validate(values); !errs.Valid() {
		inlineFieldErrors(w, errs)
		return
	}

	project := &models.Project{
		Title:       strings.TrimSpace(values["title"]),
		Description: strings.TrimSpace(values["description"]),
		Location:    strings.TrimSpace(values["location"]),
		Type:        models.NormalizeType(values["type"]),
		CreatorID:   userID,
	}

	if result := h.Moderator.Check(ctx, project); !result.Approved {
		inlineError(w, "Submission rejected: "+result.Reason)
		return
	}

	if err := h.Store.CreateProject(ctx, project); err != nil {
		logging.Logger.WithField("error", err).Error("create project failed")
		inlineError(w, "Failed to submit project. Please try again.")
		return
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			imageURL, err := storage.SaveProjectImage(h.UploadDir, project.ID, files[0])
			if err != nil {
				logging.Logger.WithField("project", project.ID).WithField("error", err).Warn("image upload failed")
			} else {
				project.ImageURL = imageURL
				if err := h.Store.SetProjectImage(ctx, project.ID, imageURL); err != nil {
					logging.Logger.WithField("project", project.ID).WithField("error", err).Warn("image attach failed")
				}
			}
		}
	}

	h.flash(w, r, "Project submitted successfully!")
	redirect(w, r, "/projects/"+project.ID)
}

// loadOwnedProject fetches the project and enforces the creator-only
// gate, handling the redirect when the check fails.
func (h *Handler) loadOwnedProject(w http.ResponseWriter, r *http.Request) *models.Project {
	projectID := chi.URLParam(r, "id")

	project, err := h.Store.GetProjectByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.NotFound(w, r)
			return nil
		}
		logging.Logger.WithField("error", err).Error("failed to load project")
		h.flash(w, r, "Failed to load the project. Please try again.")
		redirect(w, r, "/projects")
		return nil
	}

	if h.userID(r) != project.CreatorID {
		h.flash(w, r, "Only the project creator can make changes.")
		redirect(w, r, "/projects/"+projectID)
		return nil
	}

	return project
}

func (h *Handler) EditProjectPage(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwnedProject(w, r)
	if project == nil {
		return
	}

	h.render(w, r, "project_edit.html", map[string]interface{}{
		"Project": project,
		"Types":   models.AllTypes(),
	})
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwnedProject(w, r)
	if project == nil {
		return
	}

	values := map[string]string{
		"title":       r.FormValue("title"),
		"description": r.FormValue("description"),
		"location":    r.FormValue("location"),
		"type":        r.FormValue("type"),
	}
	if errs := forms.ProjectSchema(allowedTypeStrings()).Validate(values); !errs.Valid() {
		inlineFieldErrors(w, errs)
		return
	}

	project.Title = strings.TrimSpace(values["title"])
	project.Description = strings.TrimSpace(values["description"])
	project.Location = strings.TrimSpace(values["location"])
	project.Type = models.NormalizeType(values["type"])

	if err := h.Store.UpdateProject(r.Context(), project); err != nil {
		logging.Logger.WithField("project", project.ID).WithField("error", err).Error("update project failed")
		inlineError(w, "Failed to update project. Please try again.")
		return
	}

	h.flash(w, r, "Project updated.")
	redirect(w, r, "/projects/"+project.ID)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwnedProject(w, r)
	if project == nil {
		return
	}

	if err := h.Store.DeleteProject(r.Context(), project.ID); err != nil {
		logging.Logger.WithField("project", project.ID).WithField("error", err).Error("delete project failed")
		h.flash(w, r, "Failed to delete project. Please try again.")
		redirect(w, r, "/projects/"+project.ID)
		return
	}

	h.flash(w, r, "Project deleted.")
	redirect(w, r, "/projects")
}
