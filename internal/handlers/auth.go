package handlers

import (
	"errors"
	"net/http"
	"strings"

	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/internal/session"
	"winelabel/internal/views/pages"
)

// Login renders the sign-in form and processes submissions.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", session.IsHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.renderLogin(w, r, pages.AuthForm{}, nil)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")

		user, err := h.sessions.Login(r.Context(), email, password)
		if err != nil {
			form := pages.AuthForm{Email: email}
			switch {
			case errors.Is(err, session.ErrMissingCredentials):
				form.Error = "Email and password are required."
			case errors.Is(err, session.ErrInvalidCredentials):
				form.Error = "Invalid email or password. Please try again."
			default:
				applog.Error(r.Context(), "login failed", "error", err)
				form.Error = "We were unable to sign you in. Please try again."
			}
			flash := notify.LoginFailed()
			h.renderLogin(w, r, form, &flash)
			return
		}

		applog.Info(r.Context(), "user signed in", "userID", user.ID)
		session.Redirect(w, r, session.HomePath)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, form pages.AuthForm, flash *notify.Notification) {
	h.render(w, r, view{title: "Sign in", content: pages.Login(form), flash: flash})
}

// Register renders the account form and creates accounts. Mismatched passwords are
// rejected before the backend is contacted.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling register request", "method", r.Method, "htmx", session.IsHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.renderRegister(w, r, pages.AuthForm{}, nil)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		input := session.RegisterInput{
			Email:           strings.TrimSpace(r.PostFormValue("email")),
			FullName:        strings.TrimSpace(r.PostFormValue("full_name")),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		}

		user, err := h.sessions.Register(r.Context(), input)
		if err != nil {
			form := pages.AuthForm{Email: input.Email, FullName: input.FullName}
			flash := notify.RegistrationFailed()
			switch {
			case errors.Is(err, session.ErrPasswordMismatch):
				flash = notify.PasswordMismatch()
				form.Error = "Passwords do not match."
			case errors.Is(err, session.ErrMissingCredentials):
				form.Error = "Email and password are required."
			case errors.Is(err, session.ErrEmailTaken):
				form.Error = "An account with that email already exists."
			default:
				applog.Error(r.Context(), "registration failed", "error", err)
				form.Error = "We couldn't create your account right now. Please try again."
			}
			h.renderRegister(w, r, form, &flash)
			return
		}

		applog.Info(r.Context(), "account created", "userID", user.ID)
		session.Redirect(w, r, session.HomePath)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) renderRegister(w http.ResponseWriter, r *http.Request, form pages.AuthForm, flash *notify.Notification) {
	h.render(w, r, view{title: "Create account", content: pages.Register(form), flash: flash})
}

// Logout destroys the session and returns to the login screen.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		applog.Error(r.Context(), "failed to destroy session", "error", err)
	}
	session.Redirect(w, r, session.LoginPath)
}
