package helpers

import (
	"fmt"
	"strconv"
	"time"

	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"

	"github.com/gin-gonic/gin"
)

// ParseListingFilter reads the /listings query string
func ParseListingFilter(c *gin.Context) (model.ListingFilter, error) {
	var (
		f   model.ListingFilter
		err error
	)
	f.Name = stringParam(c, "name")
	f.Description = stringParam(c, "description")
	if f.EndTime, err = millisParam(c, "endTime"); err != nil {
		return f, err
	}
	if f.MinBid, err = intParam(c, "minBid"); err != nil {
		return f, err
	}
	f.Page, err = ParsePage(c)
	return f, err
}

// ParseBidFilter reads the /bids query string
func ParseBidFilter(c *gin.Context) (model.BidFilter, error) {
	var (
		f   model.BidFilter
		err error
	)
	f.Name = stringParam(c, "name")
	if f.Amount, err = intParam(c, "bidAmount"); err != nil {
		return f, err
	}
	if f.EndTime, err = millisParam(c, "endTime"); err != nil {
		return f, err
	}
	if f.MinBid, err = intParam(c, "minBid"); err != nil {
		return f, err
	}
	f.Page, err = ParsePage(c)
	return f, err
}

// ParsePage reads cursor, limit and sort. Any sort other than asc means desc.
func ParsePage(c *gin.Context) (model.Page, error) {
	p := model.Page{Cursor: c.Query("cursor"), Sort: model.SortDesc}
	if c.Query("sort") == string(model.SortAsc) {
		p.Sort = model.SortAsc
	}

	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, fmt.Errorf("%w: limit must be a positive integer, got %q", marketerrors.ErrInvalidQuery, raw)
		}
		p.Limit = limit
	}
	return p, nil
}

func stringParam(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

func intParam(c *gin.Context, key string) (*int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", marketerrors.ErrInvalidQuery, key, raw)
	}
	return &v, nil
}

func millisParam(c *gin.Context, key string) (*time.Time, error) {
	ms, err := intParam(c, key)
	if err != nil || ms == nil {
		return nil, err
	}
	t := time.UnixMilli(*ms).UTC()
	return &t, nil
}
