package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

// SandwichHandler handles HTTP requests for sandwich submission and discovery.
type SandwichHandler struct {
	service       ports.SandwichService
	carouselLimit int
}

func NewSandwichHandler(service ports.SandwichService, carouselLimit int) *SandwichHandler {
	return &SandwichHandler{service: service, carouselLimit: carouselLimit}
}

// Create handles POST /v1/sandwiches.
//
// @Summary      Submit a sandwich with its initial rating
// @Tags         sandwiches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSandwichRequest  true  "Sandwich details and rating"
// @Success      201   {object}  createSandwichResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/sandwiches [post]
func (h *SandwichHandler) Create(c echo.Context) error {
	var req createSandwichRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	result, err := h.service.Submit(c.Request().Context(), ports.SubmitSandwichInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		RestaurantName: req.RestaurantName,
		Ingredients:    req.Ingredients,
		Overall:        parseRating(req.OverallRating),
		Taste:          parseRating(req.TasteRating),
		Texture:        parseRating(req.TextureRating),
		Presentation:   parseRating(req.PresentationRating),
		Images:         req.Images,
		CallerID:       callerID(c),
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authenticated identity not found"})
		}
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "storage temporarily unavailable, retry the submission"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create sandwich"})
	}

	return c.JSON(http.StatusCreated, createSandwichResponse{
		ID:             result.ID,
		Title:          result.Title,
		Description:    result.Description,
		Type:           result.Type,
		Images:         result.Images,
		Ingredients:    result.Ingredients,
		RestaurantName: result.Restaurant,
		UserID:         result.UserID,
		OverallRating:  result.Overall,
		CreatedAt:      result.CreatedAt,
	})
}

// Get handles GET /v1/sandwiches/:id.
//
// @Summary      Get a sandwich with its ratings
// @Tags         sandwiches
// @Produce      json
// @Param        id   path      string  true  "Sandwich id"
// @Success      200  {object}  sandwichDetailResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/sandwiches/{id} [get]
func (h *SandwichHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSandwichNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "sandwich not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// Discover handles GET /v1/sandwiches.
//
// @Summary      Search and browse sandwiches
// @Tags         sandwiches
// @Produce      json
// @Param        q      query     string  false  "Case-insensitive text match on title or description"
// @Param        type   query     string  false  "RESTAURANT or HOMEMADE"
// @Param        sort   query     string  false  "newest, oldest or rating"  default(newest)
// @Param        mine   query     bool    false  "Only the caller's submissions (requires auth)"
// @Param        limit  query     int     false  "Cap the number of returned items"
// @Success      200    {object}  discoverSandwichesResponse
// @Failure      400    {object}  map[string]any
// @Failure      401    {object}  map[string]string
// @Router       /v1/sandwiches [get]
func (h *SandwichHandler) Discover(c echo.Context) error {
	input := ports.DiscoverInput{
		Query: c.QueryParam("q"),
		Type:  c.QueryParam("type"),
		Sort:  c.QueryParam("sort"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		input.Limit = limit
	}
	if mine, _ := strconv.ParseBool(c.QueryParam("mine")); mine {
		userID, err := requireCallerID(c)
		if err != nil {
			return err
		}
		input.UserID = userID
	}
	return h.discover(c, input)
}

// TopRated handles GET /v1/sandwiches/top-rated, the home page carousel.
//
// @Summary      Top rated sandwiches
// @Tags         sandwiches
// @Produce      json
// @Success      200  {object}  discoverSandwichesResponse
// @Router       /v1/sandwiches/top-rated [get]
func (h *SandwichHandler) TopRated(c echo.Context) error {
	return h.discover(c, ports.DiscoverInput{Sort: ports.SortRating, Limit: h.carouselLimit})
}

// Recent handles GET /v1/sandwiches/recent.
//
// @Summary      Most recent sandwiches
// @Tags         sandwiches
// @Produce      json
// @Success      200  {object}  discoverSandwichesResponse
// @Router       /v1/sandwiches/recent [get]
func (h *SandwichHandler) Recent(c echo.Context) error {
	return h.discover(c, ports.DiscoverInput{Sort: ports.SortNewest, Limit: h.carouselLimit})
}

func (h *SandwichHandler) discover(c echo.Context, input ports.DiscoverInput) error {
	result, err := h.service.Discover(c.Request().Context(), input)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	items := make([]sandwichSummaryResponse, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, sandwichSummaryResponse{
			ID:             s.ID,
			Title:          s.Title,
			Description:    s.Description,
			Type:           s.Type,
			Images:         s.Images,
			RestaurantName: s.RestaurantName,
			AuthorName:     s.AuthorName,
			AverageRating:  roundedAverage(s.AverageOverall, s.HasRatings),
			RatingsCount:   s.RatingsCount,
			CreatedAt:      s.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, discoverSandwichesResponse{Data: items, Total: result.Total})
}

func toDetailResponse(detail *ports.SandwichDetail) sandwichDetailResponse {
	ratings := make([]ratingResponse, 0, len(detail.Ratings))
	for _, r := range detail.Ratings {
		ratings = append(ratings, ratingResponse{
			Overall:      r.Overall,
			Taste:        r.Taste,
			Texture:      r.Texture,
			Presentation: r.Presentation,
			Composite:    domain.Round1(r.Composite),
			Review:       r.Review,
			CreatedAt:    r.CreatedAt,
		})
	}
	return sandwichDetailResponse{
		ID:             detail.ID,
		Title:          detail.Title,
		Description:    detail.Description,
		Type:           detail.Type,
		Images:         detail.Images,
		Ingredients:    detail.Ingredients,
		Price:          detail.Price,
		RestaurantName: detail.RestaurantName,
		AuthorName:     detail.AuthorName,
		AverageRating:  roundedAverage(detail.AverageOverall, detail.HasRatings),
		RatingsCount:   len(detail.Ratings),
		Ratings:        ratings,
		CreatedAt:      detail.CreatedAt,
	}
}

// roundedAverage rounds for display and keeps "no ratings yet" distinct from
// an average of zero.
func roundedAverage(avg float64, hasRatings bool) *float64 {
	if !hasRatings {
		return nil
	}
	rounded := domain.Round1(avg)
	return &rounded
}

// parseRating tolerates malformed numbers; the service rejects the resulting
// zero as out of scale.
func parseRating(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

// validationResponse renders a field-level issue list for 400 responses.
func validationResponse(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error":   "invalid input",
		"details": verr.Issues,
	})
}
