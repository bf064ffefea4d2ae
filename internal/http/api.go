package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts   service.AccountService
	reports    *service.ReportService
	adminToken string
	logger     *logrus.Logger
}

func NewHandler(accounts service.AccountService, reports *service.ReportService, adminToken string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts:   accounts,
		reports:    reports,
		adminToken: adminToken,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, response{Message: "Method not allowed"})
	})

	router.POST("/auth", h.handleAuth)
	router.GET("/admin", h.handleAdmin)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

// response is the envelope every endpoint answers with.
type response struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	User    *domain.PublicUser `json:"user,omitempty"`
}

type authRequest struct {
	Action        string `json:"action"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Membership    string `json:"membership"`
	PaymentMethod string `json:"paymentMethod"`
	Timestamp     string `json:"timestamp"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func (h *Handler) handleAuth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}

	switch req.Action {
	case "signup":
		h.signup(c, req)
	case "login":
		h.login(c, req)
	case "log_payment":
		h.logPayment(c, req)
	default:
		c.JSON(http.StatusBadRequest, response{Message: "Invalid action"})
	}
}

func (h *Handler) signup(c *gin.Context, req authRequest) {
	user, err := h.accounts.Signup(
		c.Request.Context(),
		req.Name, req.Email, req.Password,
		domain.MembershipTier(req.Membership),
		c.ClientIP(),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			c.JSON(http.StatusBadRequest, response{Message: "Name, email, and password are required"})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, response{Message: "Please enter a valid email address"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, response{Message: "Password must be at least 8 characters with letters and numbers"})
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusConflict, response{Message: "An account with this email already exists"})
		default:
			h.serverError(c, "signup", err)
		}
		return
	}

	c.JSON(http.StatusCreated, response{
		Success: true,
		Message: "Account created successfully",
		User:    user,
	})
}

func (h *Handler) login(c *gin.Context, req authRequest) {
	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			c.JSON(http.StatusBadRequest, response{Message: "Email and password are required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, response{Message: "Invalid email or password"})
		default:
			h.serverError(c, "login", err)
		}
		return
	}

	c.JSON(http.StatusOK, response{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}

func (h *Handler) logPayment(c *gin.Context, req authRequest) {
	// Client-supplied timestamps are best effort; anything unparseable
	// falls back to the current time.
	var at time.Time
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			at = parsed
		}
	}

	err := h.accounts.LogPayment(c.Request.Context(), req.Email, req.PaymentMethod, at, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrMissingField) {
			c.JSON(http.StatusBadRequest, response{Message: "Email and payment method are required"})
			return
		}
		h.serverError(c, "log payment", err)
		return
	}

	c.JSON(http.StatusOK, response{
		Success: true,
		Message: "Payment method logged",
	})
}

func (h *Handler) handleAdmin(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, response{Message: "Unauthorized - Missing token"})
		return
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, response{Message: "Unauthorized - Invalid token"})
		return
	}

	report, err := h.reports.Build(c.Request.Context())
	if err != nil {
		h.serverError(c, "admin report", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// serverError logs the underlying failure and answers with a generic
// message; store internals never reach the caller.
func (h *Handler) serverError(c *gin.Context, op string, err error) {
	h.logger.WithError(err).Errorf("%s failed", op)
	c.JSON(http.StatusInternalServerError, response{Message: "Server error occurred"})
}
