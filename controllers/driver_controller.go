package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/marcus-holt/materials-tracker-api/services"
)

// AssignDriverRequest represents the request body for assigning a driver
type AssignDriverRequest struct {
	DriverID uint `json:"driver_id" binding:"required"`
}

// ListDrivers handles GET /api/v1/drivers - lists the fleet roster, optionally
// restricted to assignable drivers (?available=true)
func ListDrivers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("User").Order("truck_number ASC")
	if c.Query("available") == "true" {
		query = query.Where("status IN ?", []models.DriverStatus{
			models.DriverAvailable, models.DriverLoading,
		})
	}

	var drivers []models.TruckDriver
	if err := query.Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch drivers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    drivers,
	})
}

// AssignDriver handles POST /api/v1/orders/:id/driver - assigns a truck
// driver to a ready-to-load order and moves it to loaded
func AssignDriver(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req AssignDriverRequest
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

	order, err := services.GetLifecycleService().AssignDriver(
		config.GetDB(), orderID, req.DriverID, user)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
