package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/middleware"
	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/marcus-holt/materials-tracker-api/services"
	"gorm.io/gorm"
)

// currentUser resolves the authenticated user's profile from the JWT subject.
// On failure it writes the error response and returns false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// respondEngineError maps a lifecycle engine failure to its HTTP status:
// INVALID_TRANSITION and DRIVER_UNAVAILABLE conflict with current state (409),
// UNAUTHORIZED is a role gate failure (403), VALIDATION_ERROR is bad input
// (400). A missing aggregate surfaces as 404.
func respondEngineError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Record not found",
			},
		})
		return
	}

	var engineErr *services.EngineError
	if errors.As(err, &engineErr) {
		status := http.StatusInternalServerError
		switch engineErr.Code {
		case services.CodeInvalidTransition, services.CodeDriverUnavailable:
			status = http.StatusConflict
		case services.CodeUnauthorized:
			status = http.StatusForbidden
		case services.CodeValidationError:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    engineErr.Code,
				"message": engineErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Operation failed",
		},
	})
}

// attachPhotoURL fills the computed presigned URL for the order's delivery
// photo when one has been uploaded
func attachPhotoURL(order *models.Order) {
	if order.DeliveryPhotoS3Key == nil || *order.DeliveryPhotoS3Key == "" {
		return
	}
	photoService := services.GetPhotoService()
	if photoService == nil {
		return
	}
	url, err := photoService.GetPhotoURL(*order.DeliveryPhotoS3Key)
	if err != nil || url == "" {
		return
	}
	order.DeliveryPhotoURL = &url
}
