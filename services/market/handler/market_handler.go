package handler

import (
	"context"
	"fmt"
	"net/http"

	model "auction-marketplace/internal/models"
	"auction-marketplace/services/market/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=market_handler.go -destination=mock_market_handler.go -package=handler

type MarketServiceInterface interface {
	CreateListing(ctx context.Context, listing model.Listing) (model.Listing, error)
	PlaceBid(ctx context.Context, listingID, bidder string, amount int64) (model.BidAck, error)
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	ActiveListings(ctx context.Context) ([]model.Listing, error)
	ListListings(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error)
	ListBids(ctx context.Context, filter model.BidFilter) ([]model.Bid, error)
}

type MarketHandler struct {
	service MarketServiceInterface
}

func NewMarketHandler(service MarketServiceInterface) *MarketHandler {
	return &MarketHandler{service: service}
}

// HealthHandler handles GET /
func (h *MarketHandler) HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, nil, "API is functional")
}

// CreateListingHandler handles POST /api/create-listing
func (h *MarketHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), model.Listing{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		EndTime:     model.Time(req.EndTime.UTC()),
		MinBid:      req.MinBid,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateListingHandler: failed to create listing", map[string]any{
			"handler":    "CreateListingHandler",
			"listing_id": req.ID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ID,
		"end_time":   listing.EndTime,
	})
}

// PlaceBidHandler handles POST /api/bid
func (h *MarketHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	ack, err := h.service.PlaceBid(c.Request.Context(), req.ListingID, req.Bidder, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"handler":    "PlaceBidHandler",
			"listing_id": req.ListingID,
			"bidder":     req.Bidder,
			"status":     status,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidAckResponse(ack), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"listing_id": ack.ListingID,
		"bidder":     ack.Bidder,
		"amount":     ack.Amount,
	})
}

// ActiveListingsHandler handles GET /api/get-listing
func (h *MarketHandler) ActiveListingsHandler(c *gin.Context) {
	listings, err := h.service.ActiveListings(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("ActiveListingsHandler: error retrieving listings", map[string]any{"error": err.Error()})
		return
	}

	resp := make([]helpers.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, helpers.ToListingResponse(l))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "listings retrieved successfully")
	helpers.LogSuccess("ActiveListingsHandler", "listings retrieved successfully", map[string]any{
		"count": len(resp),
	})
}

// GetListingHandler handles GET /api/get-listing/:listingId
func (h *MarketHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listingId")
	listing, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponse(listing), "listing retrieved successfully")
}

// SearchListingsHandler handles GET /listings
func (h *MarketHandler) SearchListingsHandler(c *gin.Context) {
	filter, err := helpers.ParseListingFilter(c)
	if err != nil {
		h.queryError(c, "SearchListingsHandler", err)
		return
	}

	listings, err := h.service.ListListings(c.Request.Context(), filter)
	if err != nil {
		h.queryError(c, "SearchListingsHandler", err)
		return
	}

	page := helpers.NewListingPage(listings)
	utils.JSONResponse(c, http.StatusOK, page, "listings retrieved successfully")
	helpers.LogSuccess("SearchListingsHandler", "listings retrieved successfully", map[string]any{
		"count":  len(page.Items),
		"cursor": page.Cursor,
	})
}

// SearchBidsHandler handles GET /bids
func (h *MarketHandler) SearchBidsHandler(c *gin.Context) {
	filter, err := helpers.ParseBidFilter(c)
	if err != nil {
		h.queryError(c, "SearchBidsHandler", err)
		return
	}

	bids, err := h.service.ListBids(c.Request.Context(), filter)
	if err != nil {
		h.queryError(c, "SearchBidsHandler", err)
		return
	}

	page := helpers.NewBidPage(bids)
	utils.JSONResponse(c, http.StatusOK, page, "bids retrieved successfully")
	helpers.LogSuccess("SearchBidsHandler", "bids retrieved successfully", map[string]any{
		"count":  len(page.Items),
		"cursor": page.Cursor,
	})
}

func (h *MarketHandler) queryError(c *gin.Context, handlerName string, err error) {
	status, message := helpers.MapQueryErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	utils.Warn(handlerName+": query failed", map[string]any{
		"query": c.Request.URL.RawQuery,
		"error": err.Error(),
	})
}
