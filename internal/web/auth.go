package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/user"
)

const maxFormSize = 64 << 10

type loginView struct {
	Email      string
	Errors     map[string]string
	Message    string
	Registered bool
}

type registerView struct {
	Name     string
	LastName string
	Email    string
	Errors   map[string]string
	Message  string
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "landing.html", page{Title: "Inicio"})
}

func (h *Handler) about(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about.html", page{Title: "Acerca de"})
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	form := loginView{Registered: r.URL.Query().Get("registered") == "true"}
	h.render(w, r, http.StatusOK, "login.html", page{Title: "Iniciar sesión", Data: form})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return
	}

	form := loginView{
		Email:  strings.TrimSpace(r.PostFormValue("email")),
		Errors: map[string]string{},
	}
	password := r.PostFormValue("password")

	if form.Email == "" {
		form.Errors["email"] = "El correo electrónico es requerido"
	}
	if password == "" {
		form.Errors["password"] = "La contraseña es requerida"
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusBadRequest, "login.html", page{Title: "Iniciar sesión", Data: form})
		return
	}

	u, err := h.Accounts.Login(r.Context(), form.Email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			form.Message = "Correo electrónico o contraseña incorrectos"
			h.render(w, r, http.StatusUnauthorized, "login.html", page{Title: "Iniciar sesión", Data: form})
			return
		}
		h.serverError(w, r, "log in", err)
		return
	}

	if err := h.Sessions.SetCookie(w, auth.SessionFor(u)); err != nil {
		h.serverError(w, r, "issue session", err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", page{Title: "Crear cuenta", Data: registerView{}})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return
	}

	form := registerView{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		LastName: strings.TrimSpace(r.PostFormValue("lastName")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Errors:   map[string]string{},
	}
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")

	if form.Name == "" {
		form.Errors["name"] = "El nombre es requerido"
	}
	switch {
	case form.Email == "":
		form.Errors["email"] = "El correo electrónico es requerido"
	case !validation.ValidEmail(form.Email):
		form.Errors["email"] = "El correo electrónico no es válido"
	}
	switch {
	case password == "":
		form.Errors["password"] = "La contraseña es requerida"
	case len(password) < 6:
		form.Errors["password"] = "La contraseña debe tener al menos 6 caracteres"
	case len(password) > 72:
		form.Errors["password"] = "La contraseña es demasiado larga"
	}
	if password != confirm {
		form.Errors["confirmPassword"] = "Las contraseñas no coinciden"
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusBadRequest, "register.html", page{Title: "Crear cuenta", Data: form})
		return
	}

	if _, err := h.Accounts.Register(r.Context(), form.Name, form.LastName, form.Email, password); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			form.Message = "Ya existe una cuenta con este correo electrónico"
			h.render(w, r, http.StatusConflict, "register.html", page{Title: "Crear cuenta", Data: form})
			return
		}
		h.serverError(w, r, "register user", err)
		return
	}

	http.Redirect(w, r, "/auth/login?registered=true", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
