package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/client-service/internal/core/domain"
	"github.com/duynhne/client-service/middleware"
)

// ClientService is the directory behaviour the HTTP layer depends on.
// Satisfied by logicv1.ClientService.
type ClientService interface {
	AddClient(ctx context.Context, req domain.CreateClientRequest) (int64, error)
	AddPhone(ctx context.Context, clientID int64, number string) (int64, error)
	UpdateClient(ctx context.Context, clientID int64, upd domain.ClientUpdate) (*domain.Client, error)
	DeletePhone(ctx context.Context, clientID int64, number string) error
	DeleteClient(ctx context.Context, clientID int64) error
	FindClient(ctx context.Context, req domain.SearchRequest) ([]domain.ClientPhone, error)
	ListClients(ctx context.Context) ([]domain.ClientPhone, error)
}

// ClientHandler handles HTTP requests for client directory operations
type ClientHandler struct {
	service ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(service ClientService) *ClientHandler {
	return &ClientHandler{
		service: service,
	}
}

// RegisterRoutes mounts the directory routes on rg. writeMiddleware runs
// before every mutating route only.
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	reads := rg.Group("/clients")
	reads.GET("", h.ListClients)
	reads.GET("/search", h.FindClient)

	writes := rg.Group("/clients", writeMiddleware...)
	writes.POST("", h.AddClient)
	writes.PATCH("/:id", h.UpdateClient)
	writes.DELETE("/:id", h.DeleteClient)
	writes.POST("/:id/phones", h.AddPhone)
	writes.DELETE("/:id/phones/:number", h.DeletePhone)
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
}

// writeError maps a directory error to its HTTP status and a safe message.
func writeError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := http.StatusInternalServerError
	body := "Internal server error"

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
		body = errorMessage(err, "Invalid request")
	case domain.KindNotFound:
		status = http.StatusNotFound
		body = errorMessage(err, "Not found")
	case domain.KindDuplicate:
		status = http.StatusConflict
		body = errorMessage(err, "Already exists")
	}

	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Warn(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": body, "kind": domain.KindOf(err)})
}

func errorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, domain.ErrInvalidPhone):
		return "Phone number must be numeric"
	case errors.Is(err, domain.ErrInvalidName):
		return "Name and surname must be 1-40 characters"
	case errors.Is(err, domain.ErrInvalidID):
		return "Client id must be a positive integer"
	case errors.Is(err, domain.ErrClientNotFound):
		return "Client not found"
	case errors.Is(err, domain.ErrPhoneNotFound):
		return "Phone not found for client"
	case errors.Is(err, domain.ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, domain.ErrPhoneExists):
		return "Phone number already registered"
	}
	return fallback
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil(rows []domain.ClientPhone) []domain.ClientPhone {
	if rows == nil {
		return []domain.ClientPhone{}
	}
	return rows
}

func clientIDParam(c *gin.Context, span trace.Span) (int64, error) {
	id, err := domain.ParseClientID(c.Param("id"))
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("client.id", id))
	return id, nil
}

// AddClient handles POST /api/v1/clients
func (h *ClientHandler) AddClient(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	var req domain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		middleware.RecordError(span, err)
		logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err), "kind": domain.KindValidation})
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	id, err := h.service.AddClient(ctx, req)
	if err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to add client", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// AddPhone handles POST /api/v1/clients/:id/phones
func (h *ClientHandler) AddPhone(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, err := clientIDParam(c, span)
	if err != nil {
		writeError(c, logger, "Invalid client id", err)
		return
	}

	var req domain.AddPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		middleware.RecordError(span, err)
		logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err), "kind": domain.KindValidation})
		return
	}

	phoneID, err := h.service.AddPhone(ctx, id, req.Number)
	if err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to add phone", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": phoneID})
}

// UpdateClient handles PATCH /api/v1/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, err := clientIDParam(c, span)
	if err != nil {
		writeError(c, logger, "Invalid client id", err)
		return
	}

	var req domain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		middleware.RecordError(span, err)
		logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err), "kind": domain.KindValidation})
		return
	}

	client, err := h.service.UpdateClient(ctx, id, domain.ClientUpdate{
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
	})
	if err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to update client", err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeletePhone handles DELETE /api/v1/clients/:id/phones/:number
func (h *ClientHandler) DeletePhone(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, err := clientIDParam(c, span)
	if err != nil {
		writeError(c, logger, "Invalid client id", err)
		return
	}

	if err := h.service.DeletePhone(ctx, id, c.Param("number")); err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to delete phone", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteClient handles DELETE /api/v1/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, err := clientIDParam(c, span)
	if err != nil {
		writeError(c, logger, "Invalid client id", err)
		return
	}

	if err := h.service.DeleteClient(ctx, id); err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to delete client", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FindClient handles GET /api/v1/clients/search
func (h *ClientHandler) FindClient(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RecordError(span, err)
		logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err), "kind": domain.KindValidation})
		return
	}

	rows, err := h.service.FindClient(ctx, req)
	if err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to find client", err)
		return
	}

	span.SetAttributes(attribute.Int("result.rows", len(rows)))
	c.JSON(http.StatusOK, nonNil(rows))
}

// ListClients handles GET /api/v1/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	rows, err := h.service.ListClients(ctx)
	if err != nil {
		middleware.RecordError(span, err)
		writeError(c, logger, "Failed to list clients", err)
		return
	}

	c.JSON(http.StatusOK, nonNil(rows))
}
