package handlers

import (
	"net/http"

	"ruta/internal/apperr"
	"ruta/internal/cache"
	"ruta/internal/logger"
	"ruta/internal/middleware"
	"ruta/internal/models"
	"ruta/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers holds the HTTP layer dependencies. The cache is optional: a nil
// client disables trip-list caching without touching the handler paths.
type Handlers struct {
	services *service.Services
	cache    *cache.ValkeyClient
}

func New(services *service.Services, cacheClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services: services,
		cache:    cacheClient,
	}
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := appErr.HTTPStatus()

	message := appErr.Message
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err, "path", c.FullPath())
		message = "Internal server error"
	}

	c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.APIResponse{
		Success: false,
		Message: message,
	})
}

// identity returns the authenticated caller. The auth middleware guarantees
// it is set on protected routes.
func identity(c *gin.Context) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, models.APIResponse{
			Success: false,
			Message: "Authentication required",
		})
	}
	return id, ok
}
