package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/diet-service/internal/i18n"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	dispatcher        *Dispatcher
	accountHandler    *AccountHandler
	foodHandler       *FoodHandler
	submissionHandler *SubmissionHandler
	dietHandler       *DietHandler
	mealPlanHandler   *MealPlanHandler
	systemHandler     *SystemHandler
	logger            utils.Logger
}

// NewHandlerManager wires every endpoint group. sso may be nil, in which
// case only "@<user_id>:<credential>" tokens are accepted.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	catalog *i18n.Catalog,
	sso SSO,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:    serviceManager,
		dispatcher:        NewDispatcher(catalog, serviceManager.Account(), sso, logger),
		accountHandler:    NewAccountHandler(serviceManager.Account(), serviceManager.Diet(), logger),
		foodHandler:       NewFoodHandler(serviceManager.Food(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		dietHandler:       NewDietHandler(serviceManager.Diet(), logger),
		mealPlanHandler:   NewMealPlanHandler(serviceManager.MealPlan(), logger),
		systemHandler:     NewSystemHandler(serviceManager.System(), serviceManager.Account(), logger),
		logger:            logger,
	}
}

// Endpoints is the full route table.
func (hm *HandlerManager) Endpoints() []Endpoint {
	var endpoints []Endpoint
	endpoints = append(endpoints, hm.accountHandler.Endpoints()...)
	endpoints = append(endpoints, hm.foodHandler.Endpoints()...)
	endpoints = append(endpoints, hm.submissionHandler.Endpoints()...)
	endpoints = append(endpoints, hm.dietHandler.Endpoints()...)
	endpoints = append(endpoints, hm.mealPlanHandler.Endpoints()...)
	endpoints = append(endpoints, hm.systemHandler.Endpoints()...)
	return endpoints
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/:lang")
	for _, e := range hm.Endpoints() {
		api.Handle(e.Method(), e.Path(), hm.dispatcher.Handle(e))
		hm.logger.Debug("Route registered", "route", e.Pattern())
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "diet-service",
		})
	})
}
