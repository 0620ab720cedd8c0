package web

import (
	"net/http"
	"strings"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/middleware"
	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
)

// handleLoginForm handles GET /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	// Already signed in: nothing to do here
	if viewerOf(r).IsAuthenticated() {
		http.Redirect(w, r, "/groups", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{
		"Title": "Login",
		"Next":  backTo(r, ""),
	})
}

// handleLogin handles POST /login: exchange credentials for a token pair and open a session.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	input := orchestrators.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{
		Tokens:       api,
		SessionStore: sessions,
		GenerateID:   generateID,
		Now:          timeNow,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		if gone(r, err) {
			return
		}
		msg, status, ok := userMessage(err)
		if !ok {
			internalError(w, err)
			return
		}
		appMetrics.SessionEvent("login_failed")
		if !isHTMLRequest(r) {
			writeDetail(w, status, msg)
			return
		}
		renderStatus(w, r, status, "login.html", map[string]any{
			"Title":    "Login",
			"Error":    msg,
			"Username": strings.TrimSpace(input.Username),
			"Next":     backTo(r, ""),
		})
		return
	}

	appMetrics.SessionEvent("login")
	middleware.SetSessionCookie(w, result.SessionID, cfg.SessionTTL())
	if !isHTMLRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, backTo(r, "/groups"), http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteLogout(r.Context(), middleware.SessionIDFrom(r.Context()), orchestrators.LogoutDeps{
		SessionStore: sessions,
	}); err != nil {
		internalError(w, err)
		return
	}
	appMetrics.SessionEvent("logout")
	middleware.ClearSessionCookie(w)
	if !isHTMLRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleSignupForm handles GET /signup
func handleSignupForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "signup.html", map[string]any{
		"Title": "Sign Up",
		"Form":  coach.CreateForm{},
	})
}

// handleSignup handles POST /signup. The new account still has to log in.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	input := orchestrators.SignupInput{
		Form: coach.CreateForm{
			Username:  r.FormValue("username"),
			Password:  r.FormValue("password"),
			Email:     r.FormValue("email"),
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
		},
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	created, err := orchestrators.ExecuteSignup(r.Context(), input, orchestrators.SignupDeps{Registrar: api})
	if err != nil {
		if gone(r, err) {
			return
		}
		msg, status, ok := userMessage(err)
		if !ok {
			internalError(w, err)
			return
		}
		if !isHTMLRequest(r) {
			writeDetail(w, status, msg)
			return
		}
		input.Form.Password = ""
		renderStatus(w, r, status, "signup.html", map[string]any{
			"Title": "Sign Up",
			"Error": msg,
			"Form":  input.Form,
		})
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, created)
		return
	}
	middleware.SetFlash(w, middleware.FlashSuccess, "Signup successful. You can now log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleProfile handles GET /profile
func handleProfile(w http.ResponseWriter, r *http.Request) {
	viewer := viewerOf(r)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, identity.Me{User: viewer.User, Coach: viewer.Coach, IsStaff: viewer.IsStaff()})
		return
	}
	form := orchestrators.ProfileForm{
		FirstName: viewer.User.FirstName,
		LastName:  viewer.User.LastName,
		Email:     viewer.User.Email,
	}
	if viewer.Coach != nil {
		form.Bio = viewer.Coach.Bio
		form.Phone = viewer.Coach.Phone
	}
	renderTemplate(w, r, "profile.html", map[string]any{
		"Title":      "My Profile",
		"Form":       form,
		"HasProfile": viewer.Coach != nil || viewer.IsStaff(),
	})
}

// handleUpdateProfile handles POST /profile (multipart when a photo is attached).
func handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}
	photo, closePhoto, err := formUpload(r, "photo")
	if err != nil {
		badRequest(w, r, "Could not read the uploaded photo")
		return
	}
	defer closePhoto()

	input := orchestrators.UpdateProfileInput{
		Token:  tokenOf(r),
		Viewer: viewerOf(r),
		Form: orchestrators.ProfileForm{
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Email:     r.FormValue("email"),
			Bio:       r.FormValue("bio"),
			Phone:     r.FormValue("phone"),
		},
		Photo: photo,
	}

	me, err := orchestrators.ExecuteUpdateProfile(r.Context(), input, orchestrators.UpdateProfileDeps{Profiles: api})
	if err != nil {
		actionError(w, r, "/profile", err)
		return
	}
	actionDone(w, r, "/profile", "Profile saved.", me)
}

// handleChangePassword handles POST /profile/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "Invalid form submission")
		return
	}

	input := orchestrators.ChangePasswordInput{
		Token:           tokenOf(r),
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	detail, err := orchestrators.ExecuteChangePassword(r.Context(), input, orchestrators.ChangePasswordDeps{Passwords: api})
	if err != nil {
		actionError(w, r, "/profile", err)
		return
	}
	if !isHTMLRequest(r) {
		writeDetail(w, http.StatusOK, detail)
		return
	}
	actionDone(w, r, "/profile", detail, nil)
}
