package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jerseyhub/gallery-system/internal/api/metrics"
	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	AccessCode   string `json:"access_code"`
	GuestSession string `json:"guest_session"`
}

type signupRequest struct {
	Name         string `json:"name" validate:"required"`
	AccessCode   string `json:"access_code" validate:"required,min=6,numeric"`
	GuestSession string `json:"guest_session"`
}

type logoutRequest struct {
	GuestSession string `json:"guest_session"`
}

// userPayload renders an identity with the balance in whole points.
type userPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Handle   string  `json:"handle"`
	Role     string  `json:"role"`
	Points   float64 `json:"points"`
	IsBanned bool    `json:"is_banned"`
}

func toUserPayload(u *domain.User) *userPayload {
	if u == nil {
		return nil
	}
	return &userPayload{
		ID:       u.ID,
		Name:     u.Name,
		Handle:   u.Handle,
		Role:     u.Role,
		Points:   u.Points.Float(),
		IsBanned: u.IsBanned,
	}
}

// replayPayload reports the deferred action executed right after login.
type replayPayload struct {
	DesignID   string  `json:"design_id"`
	SourceLink string  `json:"source_link,omitempty"`
	Points     float64 `json:"points,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type authResponse struct {
	Token  string         `json:"token"`
	User   *userPayload   `json:"user"`
	Replay *replayPayload `json:"replay,omitempty"`
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	out := authResponse{Token: res.Token, User: toUserPayload(res.User)}
	if res.Replay != nil {
		rp := &replayPayload{DesignID: res.Replay.Command.DesignID}
		if res.Replay.Err != nil {
			rp.Error = res.Replay.Err.Error()
		} else if res.Replay.Download != nil {
			rp.SourceLink = res.Replay.Download.SourceLink
			rp.Points = res.Replay.Download.Remaining.Float()
		}
		out.Replay = rp
	}
	return out
}

// Login authenticates either the fixed admin pair or a member access code.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	mode := "admin"
	if req.AccessCode != "" {
		mode = "code"
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username:     req.Username,
		Password:     req.Password,
		AccessCode:   req.AccessCode,
		GuestSession: req.GuestSession,
	})
	metrics.LoginsTotal.WithLabelValues(mode, authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// authResult maps an authentication outcome onto the metric result label.
func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrBanned):
		return "banned"
	default:
		return "invalid"
	}
}

// Signup provisions a member profile and signs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "New member details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Name:         req.Name,
		AccessCode:   req.AccessCode,
		GuestSession: req.GuestSession,
	})
	metrics.LoginsTotal.WithLabelValues("signup", authResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Logout drops any deferred action captured for the guest session. Tokens
// are stateless, so nothing else is invalidated server-side.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  true  "Session to clear"
// @Success      204   "cleared"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	h.authService.Logout(req.GuestSession)
	return c.NoContent(http.StatusNoContent)
}
