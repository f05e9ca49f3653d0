package httpapi

import (
	"net/http"
	"time"

	"ecochain-be/internal/auth"
	"ecochain-be/internal/user"
)

const sessionTTL = 24 * time.Hour

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, r, res.Token)
	writeJSON(w, http.StatusCreated, res)
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.Users.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, r, res.Token)
	writeJSON(w, http.StatusOK, res)
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	u, err := a.Users.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
