package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
)

// AddNoteRequest represents the request body for adding a note to an order
type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// canDiscussOrder reports whether the user participates in the order's
// conversation: its requester, its assigned driver, or any shop role
func canDiscussOrder(order *models.Order, user *models.User) bool {
	if order.RequestedByID == user.ID {
		return true
	}
	if order.AssignedToID != nil && *order.AssignedToID == user.ID {
		return true
	}
	switch user.Role {
	case models.RoleShopManager, models.RoleAssistantShopManager, models.RoleShopEmployee:
		return true
	}
	return false
}

// AddNote handles POST /api/v1/orders/:id/notes - adds a note to an order's conversation
func AddNote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !canDiscussOrder(&order, user) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "You do not have permission to add notes on this order",
			},
		})
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	note := models.Note{
		OrderID:  order.ID,
		AuthorID: user.ID,
		Text:     req.Text,
	}

	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create note",
			},
		})
		return
	}

	// Load the author relationship to return complete data
	if err := db.Preload("Author").First(&note, note.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load note details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    note,
	})
}

// ListNotes handles GET /api/v1/orders/:id/notes - lists an order's notes oldest first
func ListNotes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !canDiscussOrder(&order, user) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "You do not have permission to view notes on this order",
			},
		})
		return
	}

	var notes []models.Note
	if err := db.Where("order_id = ?", order.ID).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notes",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notes,
	})
}
