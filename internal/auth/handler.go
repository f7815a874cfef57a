package auth

import (
	"net/http"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stateTTL = 10 * time.Minute

type HandlerConfig struct {
	FrontendURL   string
	SecureCookies bool
}

type Handler struct {
	provider Authenticator
	sessions *Sessions
	cfg      HandlerConfig
}

// NewHandler wires the login flow. provider may be nil, in which case login
// answers 503 and everybody is anonymous.
func NewHandler(provider Authenticator, sessions *Sessions, cfg HandlerConfig) *Handler {
	return &Handler{provider: provider, sessions: sessions, cfg: cfg}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", h.HandleLogin)
	mux.HandleFunc("GET /auth/callback", h.HandleCallback)
	mux.HandleFunc("GET /auth/logout", h.HandleLogout)
	mux.HandleFunc("GET /api/me", h.HandleMe)
}

type meResponse struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		utils.WriteJSONError(w, ErrProviderMissing.Error(), http.StatusServiceUnavailable)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "handler"),
		zap.String("method", "AuthCallback"),
	)

	if h.provider == nil {
		utils.WriteJSONError(w, ErrProviderMissing.Error(), http.StatusServiceUnavailable)
		return
	}

	saved, err := r.Cookie(StateCookie)
	if err != nil || saved.Value == "" || saved.Value != r.URL.Query().Get("state") {
		log.Warn("state mismatch")
		utils.WriteJSONError(w, ErrStateMismatch.Error(), http.StatusBadRequest)
		return
	}
	h.clearCookie(w, StateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteJSONError(w, ErrMissingCode.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.provider.Exchange(ctx, code)
	if err != nil {
		log.Error("code exchange failed", zap.Error(err))
		utils.WriteJSONError(w, "failed to exchange token", http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Issue(*user)
	if err != nil {
		log.Error("failed to issue session", zap.Error(err))
		utils.WriteJSONError(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login successful", zap.String("sub", user.Sub))
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, SessionCookie)

	target := h.cfg.FrontendURL
	if h.provider != nil {
		target = h.provider.LogoutURL(h.cfg.FrontendURL)
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	utils.WriteJSON(w, http.StatusOK, meResponse{IsAuthenticated: ok, User: user})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
