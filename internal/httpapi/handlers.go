package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrEthical07/campusride"
	"github.com/MrEthical07/campusride/locale"
	"github.com/MrEthical07/campusride/middleware"
)

const (
	msgCodeSent        = "Verification code sent"
	msgRegistered      = "Registration successful!"
	msgLoggedIn        = "Login successful!"
	msgLoggedOut       = "Logged out successfully"
	msgResetRequested  = "If the email is registered, a reset code has been sent"
	msgPasswordUpdated = "Password updated, please log in again"
	msgDeleteCodeSent  = "Deletion code sent to your email"
	msgAccountDeleted  = "Account deleted"
	msgLanguageChanged = "Language updated"
)

type emailBody struct {
	Email    string `json:"email"`
	Language string `json:"language"`
}

type registerBody struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Username string `json:"username"`
	Password string `json:"password"`
	Language string `json:"language"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetBody struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type deleteBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type languageBody struct {
	Language string `json:"language"`
}

type userResponse struct {
	LoggedIn bool                    `json:"loggedIn"`
	User     *campusride.AccountView `json:"user,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	UserStore bool   `json:"userStore"`
	Redis     *bool  `json:"redis,omitempty"`
}

// decode reads a JSON body into dst. An empty body leaves dst zeroed.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", campusride.ErrInvalidInput, err)
	}
	return nil
}

// requestLanguage prefers an explicit body value and falls back to the
// Accept-Language header.
func requestLanguage(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return locale.Match(r.Header.Get("Accept-Language")).String()
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if middleware.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "op", op, "error", err)
	}
	middleware.WriteError(w, err)
}

func (h *handler) sendVerification(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "send_verification", err)
		return
	}

	err := h.engine.SendRegistrationCode(r.Context(), body.Email, requestLanguage(r, body.Language))
	if err != nil {
		h.fail(w, r, "send_verification", err)
		return
	}
	middleware.WriteOK(w, msgCodeSent)
}

func (h *handler) verifyRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "verify_register", err)
		return
	}

	res, err := h.engine.CompleteRegistration(r.Context(), campusride.RegistrationRequest{
		Email:    body.Email,
		Code:     body.Code,
		Username: body.Username,
		Password: body.Password,
		Language: requestLanguage(r, body.Language),
	})
	if err != nil {
		h.fail(w, r, "verify_register", err)
		return
	}
	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	middleware.WriteOK(w, msgRegistered)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "login", err)
		return
	}

	res, err := h.engine.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	middleware.WriteOK(w, msgLoggedIn)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.SessionToken(r, h.cookieName); ok {
		if err := h.engine.Logout(r.Context(), token); err != nil {
			h.fail(w, r, "logout", err)
			return
		}
	}
	h.clearSessionCookie(w)
	middleware.WriteOK(w, msgLoggedOut)
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "forgot_password", err)
		return
	}

	if err := h.engine.RequestPasswordReset(r.Context(), body.Email); err != nil {
		h.fail(w, r, "forgot_password", err)
		return
	}
	middleware.WriteOK(w, msgResetRequested)
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}

	err := h.engine.ResetPassword(r.Context(), campusride.PasswordResetRequest{
		Email:       body.Email,
		Code:        body.Code,
		NewPassword: body.NewPassword,
	})
	if err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}
	h.clearSessionCookie(w)
	middleware.WriteOK(w, msgPasswordUpdated)
}

func (h *handler) sendDeleteVerification(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	if err := h.engine.RequestAccountDeletion(r.Context(), token); err != nil {
		h.fail(w, r, "send_delete_verification", err)
		return
	}
	middleware.WriteOK(w, msgDeleteCodeSent)
}

func (h *handler) verifyDelete(w http.ResponseWriter, r *http.Request) {
	var body deleteBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "verify_delete", err)
		return
	}

	token, _ := middleware.TokenFromContext(r.Context())
	if err := h.engine.ConfirmAccountDeletion(r.Context(), token, body.Email, body.Code); err != nil {
		h.fail(w, r, "verify_delete", err)
		return
	}
	h.clearSessionCookie(w)
	middleware.WriteOK(w, msgAccountDeleted)
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		middleware.WriteJSON(w, http.StatusOK, userResponse{})
		return
	}

	view, err := h.engine.CurrentUser(r.Context(), token)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, userResponse{LoggedIn: true, User: &view})
	case campusride.KindOf(err) == campusride.KindAuth:
		middleware.WriteJSON(w, http.StatusOK, userResponse{})
	default:
		h.fail(w, r, "current_user", err)
	}
}

func (h *handler) changeLanguage(w http.ResponseWriter, r *http.Request) {
	var body languageBody
	if err := h.decode(w, r, &body); err != nil {
		h.fail(w, r, "change_language", err)
		return
	}

	token, _ := middleware.TokenFromContext(r.Context())
	if _, err := h.engine.ChangeLanguage(r.Context(), token, body.Language); err != nil {
		h.fail(w, r, "change_language", err)
		return
	}
	middleware.WriteOK(w, msgLanguageChanged)
}

func (h *handler) routes(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	list, err := h.engine.Routes(r.Context(), token)
	if err != nil {
		h.fail(w, r, "routes", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

func (h *handler) directions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "directions", fmt.Errorf("%w: route id", campusride.ErrInvalidInput))
		return
	}

	token, _ := middleware.TokenFromContext(r.Context())
	d, err := h.engine.Directions(r.Context(), token, id)
	if err != nil {
		h.fail(w, r, "directions", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, d)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Health(r.Context())
	resp := healthResponse{Status: "ok", UserStore: st.UserStore}
	if st.RedisEnabled {
		redisUp := st.Redis
		resp.Redis = &redisUp
	}

	status := http.StatusOK
	if !st.OK() {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	middleware.WriteJSON(w, status, resp)
}
