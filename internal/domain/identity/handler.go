package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
	"github.com/dermaclinic/dermaclinic/internal/platform/session"
)

const sessionCookie = "clinic_sid"

type Handler struct {
	svc        *Service
	issuer     *auth.TokenIssuer
	sessions   session.Store
	sessionTTL time.Duration
}

func NewHandler(svc *Service, issuer *auth.TokenIssuer, sessions session.Store, sessionTTL time.Duration) *Handler {
	return &Handler{svc: svc, issuer: issuer, sessions: sessions, sessionTTL: sessionTTL}
}

// RegisterPublicRoutes registers the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/logout", h.Logout)
}

// RegisterRoutes registers the authenticated user-management routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(RoleAssistant))
	staff.GET("/users", h.ListUsers)
	staff.GET("/users/:id", h.GetUser)

	doctors := api.Group("", auth.RequireRole())
	doctors.PATCH("/users/:id", h.UpdateUser)
	doctors.POST("/users/:id/deactivate", h.DeactivateUser)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), req.Username, req.Password, req.Name, req.Role)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	u, err := h.svc.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return err
	}

	token, err := h.issuer.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return err
	}

	sid := session.NewSID()
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id": u.ID,
		"role":    u.Role,
	})
	expire := time.Now().Add(h.sessionTTL)
	if err := h.sessions.Set(ctx, sid, payload, expire); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Expires:  expire,
		HttpOnly: true,
		Path:     "/",
	})

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: u})
}

func (h *Handler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", MaxAge: -1, Path: "/"})
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeactivateUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.Deactivate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}
