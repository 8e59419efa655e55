package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/session"
	"trading-journal-go/internal/supabase"
)

type authHandler struct {
	session *session.Holder
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *authHandler) register(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/signin", h.signIn)
	g.POST("/signup", h.signUp)
	g.POST("/signout", h.signOut)
	g.GET("/session", h.current)
	g.POST("/visibility", h.visibility)

	r.GET("/profile", h.profile)
	r.PUT("/profile", h.updateProfile)
}

func (h *authHandler) signIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	snap, err := h.session.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			fail(c, http.StatusUnauthorized, apiErr.Message, nil)
			return
		}
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", snap)
}

func (h *authHandler) signUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	outcome, err := h.session.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		failErr(c, err)
		return
	}
	message := ""
	if outcome.ConfirmationRequired {
		message = "Check your email to confirm your account."
	}
	ok(c, http.StatusCreated, message, outcome)
}

func (h *authHandler) signOut(c *gin.Context) {
	ok(c, http.StatusOK, "", h.session.SignOut(c.Request.Context()))
}

func (h *authHandler) current(c *gin.Context) {
	ok(c, http.StatusOK, "", h.session.Snapshot())
}

func (h *authHandler) visibility(c *gin.Context) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ok(c, http.StatusOK, "", h.session.SetVisibility(req.Hidden))
}

func (h *authHandler) profile(c *gin.Context) {
	snap := h.session.Snapshot()
	if !snap.Authenticated() {
		failErr(c, session.ErrNotAuthenticated)
		return
	}
	ok(c, http.StatusOK, "", snap.Profile)
}

func (h *authHandler) updateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := update.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	profile, err := h.session.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", profile)
}
