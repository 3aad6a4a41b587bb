package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
)

// ListNotifications handles GET /api/v1/notifications - lists notifications
// newest first, with the unread count alongside
func ListNotifications(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var notifications []models.Notification
	err := db.Preload("UpdatedBy").
		Order("created_at DESC, id DESC").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	var unread int64
	db.Model(&models.Notification{}).Where("read = ?", false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         notifications,
		"unread_count": unread,
	})
}

// MarkNotificationRead handles PATCH /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.First(&notification, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTIFICATION_NOT_FOUND",
				"message": "Notification not found",
			},
		})
		return
	}

	if err := db.Model(&notification).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update notification",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	result := db.Model(&models.Notification{}).
		Where("read = ?", false).
		Update("read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"marked_read": result.RowsAffected,
		},
	})
}
