// Package web serves the task page over HTTP.
//
// Every request builds a short-lived controller over the shared store; the
// form mode and filter selection travel with the request (hidden field and
// query string). Controller operations are serialized by one mutex, the
// counterpart of a browser page's single event loop.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"

	"taskman/internal/controller"
	"taskman/internal/httpmw"
	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/task"
)

// FlashCookie carries an alert across the redirect that follows an action.
const FlashCookie = "taskman_flash"

// Options configures a Server.
type Options struct {
	Store  store.Store
	Logger *log.Logger

	// Locale, if set, is used for every request. Otherwise the locale comes
	// from Accept-Language, falling back to DefaultLocale.
	Locale        *render.Locale
	DefaultLocale render.Locale
}

// Server handles the task page.
type Server struct {
	store         store.Store
	logger        *log.Logger
	locale        *render.Locale
	defaultLocale render.Locale

	mu sync.Mutex
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:         opts.Store,
		logger:        logger,
		locale:        opts.Locale,
		defaultLocale: opts.DefaultLocale,
	}, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /tasks", s.handleSubmit)
	mux.HandleFunc("POST /tasks/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /tasks/{id}/delete", s.handleConfirmDelete)
	mux.HandleFunc("POST /tasks/{id}/delete", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(s.logger),
		httpmw.WithRecover(s.logger),
	)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "url", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// request is the per-request controller and what it reported.
type request struct {
	ctl    *controller.Controller
	alerts []string
	tasks  []task.Task
}

func (rq *request) RenderTasks(tasks []task.Task, _ task.Filter) { rq.tasks = tasks }
func (rq *request) RenderForm(controller.Form)                   {}

func (rq *request) flash() string {
	return strings.Join(rq.alerts, "\n")
}

func (s *Server) newRequest(filter task.Filter, form controller.Form, confirm controller.ConfirmFunc) *request {
	rq := &request{}
	rq.ctl = controller.New(s.store,
		controller.WithView(rq),
		controller.WithAlert(func(msg string) { rq.alerts = append(rq.alerts, msg) }),
		controller.WithConfirm(confirm),
		controller.WithLogger(s.logger),
		controller.WithFilter(filter),
		controller.WithForm(form),
	)
	return rq
}

func (s *Server) localeFor(r *http.Request) render.Locale {
	if s.locale != nil {
		return *s.locale
	}
	return render.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"), s.defaultLocale)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.newRequest(filter, controller.BlankForm(), nil)
	if id := r.URL.Query().Get("edit"); id != "" {
		if _, err := rq.ctl.Edit(r.Context(), id); err != nil && !errors.Is(err, controller.ErrNotFound) {
			s.storageError(w, r, err)
			return
		}
	}
	if _, err := rq.ctl.Reload(r.Context()); err != nil {
		s.storageError(w, r, err)
		return
	}

	flash := takeFlash(w, r)
	if msg := rq.flash(); msg != "" {
		flash = msg
	}
	s.renderPage(w, r, http.StatusOK, rq.ctl.Form(), filter, rq.tasks, flash)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form := controller.BlankForm()
	if id := strings.TrimSpace(r.PostForm.Get("editing_id")); id != "" {
		form.EditingID = id
		form.SubmitLabel = controller.LabelUpdate
	}
	in := controller.FormInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		DueDate:     r.PostForm.Get("due_date"),
		Priority:    r.PostForm.Get("priority"),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.newRequest(filter, form, nil)
	err = rq.ctl.Submit(r.Context(), in)
	switch {
	case isInputError(err):
		// The form keeps what the user typed.
		kept := rq.ctl.Form()
		kept.Title = in.Title
		kept.Description = in.Description
		kept.DueDate = in.DueDate
		kept.Priority = in.Priority
		if _, rerr := rq.ctl.Reload(r.Context()); rerr != nil {
			s.storageError(w, r, rerr)
			return
		}
		s.renderPage(w, r, http.StatusUnprocessableEntity, kept, filter, rq.tasks, rq.flash())
		return
	case err != nil && !errors.Is(err, controller.ErrNotFound):
		s.storageError(w, r, err)
		return
	}
	s.redirectHome(w, r, filter, rq.flash())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	checked := r.PostForm.Get("completed") == "on"

	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.newRequest(filter, controller.BlankForm(), nil)
	if _, err := rq.ctl.SetCompleted(r.Context(), r.PathValue("id"), checked); err != nil && !errors.Is(err, controller.ErrNotFound) {
		s.storageError(w, r, err)
		return
	}
	s.redirectHome(w, r, filter, rq.flash())
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.GetAll(r.Context())
	if err != nil {
		s.storageError(w, r, err)
		return
	}
	i := task.Index(tasks, r.PathValue("id"))
	if i < 0 {
		s.redirectHome(w, r, filter, controller.MsgNotFound)
		return
	}

	templ.Handler(render.ConfirmPage(render.ConfirmData{
		Task:   tasks[i],
		Filter: filter,
		Locale: s.localeFor(r),
	})).ServeHTTP(w, r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"

	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.newRequest(filter, controller.BlankForm(), func(string) bool { return confirmed })
	if _, err := rq.ctl.Delete(r.Context(), r.PathValue("id")); err != nil && !errors.Is(err, controller.ErrNotFound) {
		s.storageError(w, r, err)
		return
	}
	s.redirectHome(w, r, filter, rq.flash())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tasks, err := s.store.GetAll(r.Context())
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("health check failed", "request_id", httpmw.RequestIDFromContext(r.Context()), "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": "task storage unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"tasks": len(tasks),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, form controller.Form, filter task.Filter, tasks []task.Task, flash string) {
	page := render.Page(render.PageData{
		Tasks:  tasks,
		Filter: filter,
		Form:   form,
		Locale: s.localeFor(r),
		Flash:  flash,
	})
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request, filter task.Filter, flash string) {
	if flash != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookie,
			Value:    url.QueryEscape(flash),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	target := "/"
	if q := render.FilterQuery(filter); len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("storage error",
		"request_id", httpmw.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"err", err,
	)
	http.Error(w, "storage error", http.StatusInternalServerError)
}

// takeFlash returns the pending flash message and clears its cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(FlashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: FlashCookie, Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

func filterFromQuery(q url.Values) (task.Filter, error) {
	return task.NewFilter(q.Get("status"), q.Get("priority"))
}

func isInputError(err error) bool {
	return errors.Is(err, controller.ErrTitleRequired) ||
		errors.Is(err, task.ErrInvalidPriority) ||
		errors.Is(err, task.ErrInvalidDueDate)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
