package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/application/supersede"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/media"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/rating"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/session"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// timeNow is a variable for testability.
var timeNow = time.Now

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// staticFS serves the embedded assets under /static/.
var staticFS = func() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// maxUploadBytes bounds multipart bodies (player and profile photos).
const maxUploadBytes = 10 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isHTMLRequest(r *http.Request) bool {
	return middleware.WantsHTML(r)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

// writeDetail answers a JSON client the way the academy API does.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// viewerOf returns the identity resolved for this request.
func viewerOf(r *http.Request) identity.Identity {
	return middleware.IdentityFrom(r.Context())
}

// tokenOf returns the access token of the request's session, or "".
func tokenOf(r *http.Request) string {
	return middleware.TokenFrom(r.Context())
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil && id > 0
}

// formInt reads an integer form value; missing or malformed values read as 0.
func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

// confirmed reports whether a destructive form carried its confirm checkbox.
func confirmed(r *http.Request) bool {
	switch r.FormValue("confirm") {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// parseForm reads url-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

// formUpload returns the uploaded file under field, or nil when none was sent.
// The caller owns the returned close function.
func formUpload(r *http.Request, field string) (*orchestrators.Upload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	if hdr.Size == 0 {
		f.Close()
		return nil, func() {}, nil
	}
	up := &orchestrators.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Content:     f,
	}
	return up, func() { f.Close() }, nil
}

// userFacing are failures whose message is written for the person at the keyboard.
var userFacing = []error{
	orchestrators.ErrInvalidCredentials,
	orchestrators.ErrSessionExpired,
	orchestrators.ErrPasswordMismatch,
	orchestrators.ErrPasswordTooShort,
	orchestrators.ErrSignupPasswordMismatch,
	orchestrators.ErrNotConfirmed,
	orchestrators.ErrGroupRequired,
	orchestrators.ErrMoveToSameGroup,
	orchestrators.ErrPlayerRequired,
	orchestrators.ErrPhotoRequired,
	orchestrators.ErrEvaluationNotFound,
	orchestrators.ErrNoEmailAddress,
	orchestrators.ErrEmptyReport,
	attendance.ErrDaysOutOfRange,
	attendance.ErrInvalidMonth,
}

// userMessage turns an error into the text and status shown to the user.
// ok is false for internal failures that must not be shown.
func userMessage(err error) (msg string, status int, ok bool) {
	if errors.Is(err, orchestrators.ErrMoveHalfApplied) {
		return orchestrators.ErrMoveHalfApplied.Error() + ": " + academyapi.Message(err), http.StatusConflict, true
	}
	if apiErr, isAPI := academyapi.AsError(err); isAPI {
		status = apiErr.Status
		if status >= http.StatusInternalServerError || status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return apiErr.Detail(), status, true
	}
	if errors.Is(err, validation.ErrInvalid) {
		return validation.Message(err), http.StatusBadRequest, true
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			status = http.StatusBadRequest
			if known == orchestrators.ErrInvalidCredentials {
				status = http.StatusUnauthorized
			}
			return capitalize(known.Error()), status, true
		}
	}
	return "", http.StatusInternalServerError, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// gone reports a request abandoned by the browser; nothing should be written.
func gone(r *http.Request, err error) bool {
	return errors.Is(err, context.Canceled) || r.Context().Err() != nil
}

// actionError reports a failed mutation. Browsers are sent back with the
// message as a flash; other clients get a JSON detail.
func actionError(w http.ResponseWriter, r *http.Request, back string, err error) {
	if gone(r, err) {
		return
	}
	msg, status, ok := userMessage(err)
	if !ok {
		internalError(w, err)
		return
	}
	slog.Info("action_failed", "path", r.URL.Path, "status", status, "detail", msg)
	if academyapi.IsUnauthorized(err) {
		forgetSession(w, r)
		back = "/login"
	}
	if isHTMLRequest(r) {
		middleware.SetFlash(w, middleware.FlashError, msg)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeDetail(w, status, msg)
}

// forgetSession drops the stored token pair and the cookie after the API
// rejected the session's token.
// POST: the session no longer exists in the store
func forgetSession(w http.ResponseWriter, r *http.Request) {
	if id := middleware.SessionIDFrom(r.Context()); id != "" {
		if err := sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Warn("session_delete_failed", "error", err)
		}
		slog.Info("auth_event", "event", "token_rejected")
	}
	middleware.ClearSessionCookie(w)
}

// actionDone finishes a successful mutation: a flash and redirect for browsers,
// the JSON value (or 204 when nil) for other clients.
func actionDone(w http.ResponseWriter, r *http.Request, back, message string, v any) {
	if isHTMLRequest(r) {
		if message != "" {
			middleware.SetFlash(w, middleware.FlashSuccess, message)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// pageError reports a page whose data could not be loaded.
func pageError(w http.ResponseWriter, r *http.Request, err error) {
	if gone(r, err) {
		return
	}
	msg, status, ok := userMessage(err)
	if !ok {
		internalError(w, err)
		return
	}
	if academyapi.IsUnauthorized(err) {
		forgetSession(w, r)
		if isHTMLRequest(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
	}
	if !isHTMLRequest(r) {
		writeDetail(w, status, msg)
		return
	}
	renderStatus(w, r, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
}

// badRequest rejects malformed input before any API call.
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	if isHTMLRequest(r) {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	writeDetail(w, http.StatusBadRequest, msg)
}

// notFound answers unknown ids with the error page.
func notFound(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	renderStatus(w, r, http.StatusNotFound, "error.html", map[string]any{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "The page you asked for does not exist.",
	})
}

// backTo returns a same-site redirect target from the form, or fallback.
func backTo(r *http.Request, fallback string) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, `\`) {
		return next
	}
	return fallback
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderStatus(w, r, http.StatusOK, templateName, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	viewer := viewerOf(r)
	origin := ""
	if api != nil {
		origin = api.Origin()
	}
	flash, hasFlash := middleware.PopFlash(w, r)

	funcMap := template.FuncMap{
		"viewer":     func() identity.Identity { return viewer },
		"isLoggedIn": func() bool { return viewer.IsAuthenticated() },
		"isStaff":    func() bool { return viewer.IsStaff() },
		"viewerPhoto": func() string {
			return viewer.PhotoURL(origin)
		},
		"flash": func() *middleware.Flash {
			if !hasFlash {
				return nil
			}
			return &flash
		},
		"currentPath": func() string { return r.URL.Path },
		"csrfToken":   func() string { return csrf.Token(r) },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"mediaURL":    func(photo string) string { return media.ResolveURL(origin, photo) },
		"ratingLabel": rating.Label,
		"ratingOptions": func() []rating.Option {
			return rating.Options()
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"derefInt": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"skillForm": func(cats []evaluation.Category, scores evaluation.Scores) skillForm {
			return skillForm{Categories: cats, Scores: scores}
		},
		"perfTable": func(title string, rows []perf.PathStat) perfTable {
			return perfTable{Title: title, Rows: rows}
		},
		"ms":  func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFiles,
		"templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// skillForm feeds the shared skill selects of the evaluation forms.
type skillForm struct {
	Categories []evaluation.Category
	Scores     evaluation.Scores
}

// perfTable is one table of the performance page.
type perfTable struct {
	Title string
	Rows  []perf.PathStat
}

// isSuperseded reports a save overtaken by a newer one for the same cell.
func isSuperseded(err error) bool {
	return errors.Is(err, supersede.ErrSuperseded)
}

// handleHealthz answers liveness probes.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics serves Prometheus metrics when they are enabled.
func handleMetrics(w http.ResponseWriter, r *http.Request) {
	if appMetrics == nil {
		http.NotFound(w, r)
		return
	}
	appMetrics.Handler().ServeHTTP(w, r)
}

// handleForbidden is shown to signed-in users who lack staff rights.
func handleForbidden(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	renderStatus(w, r, http.StatusForbidden, "error.html", map[string]any{
		"Title":   "Forbidden",
		"Status":  http.StatusForbidden,
		"Message": "This page is for academy staff only.",
	})
}
