package server

import (
	handler "auction-marketplace/services/market/handler"
	"auction-marketplace/services/market/helpers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(marketService handler.MarketServiceInterface) (*gin.Engine, error) {
	if err := helpers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // tag every request
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware)

	marketHandler := handler.NewMarketHandler(marketService)

	router.GET("/", marketHandler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// search endpoints
	router.GET("/listings", marketHandler.SearchListingsHandler)
	router.GET("/bids", marketHandler.SearchBidsHandler)

	api := router.Group("/api")
	{
		api.POST("/create-listing", marketHandler.CreateListingHandler)
		api.POST("/bid", marketHandler.PlaceBidHandler)
		api.GET("/get-listing", marketHandler.ActiveListingsHandler)
		api.GET("/get-listing/:listingId", marketHandler.GetListingHandler)
	}

	return router, nil
}
