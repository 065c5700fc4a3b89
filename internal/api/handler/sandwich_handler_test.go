package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

type stubSandwichService struct {
	submitFn   func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error)
	getFn      func(ctx context.Context, id string) (*ports.SandwichDetail, error)
	discoverFn func(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error)
}

func (s *stubSandwichService) Submit(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
	return s.submitFn(ctx, input)
}

func (s *stubSandwichService) Get(ctx context.Context, id string) (*ports.SandwichDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubSandwichService) Discover(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
	return s.discoverFn(ctx, input)
}

const validSandwichBody = `{
	"title": "The Classic Melt",
	"description": "Three cheeses on sourdough, grilled slow.",
	"type": "HOMEMADE",
	"ingredients": "Bread, Cheese, Butter",
	"overall_rating": "8.5",
	"taste_rating": "9",
	"texture_rating": "8",
	"presentation_rating": "7.5",
	"images": ["https://img.example.com/melt.jpg"]
}`

func TestSandwichHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		submitFn: func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
			if input.Title != "The Classic Melt" {
				t.Fatalf("unexpected title: %s", input.Title)
			}
			if input.Overall != 8.5 || input.Presentation != 7.5 {
				t.Fatalf("rating strings not parsed: %+v", input)
			}
			if input.CallerID != "user_1" {
				t.Fatalf("caller id not forwarded: %q", input.CallerID)
			}
			return &ports.SubmitSandwichResult{
				ID:          "sandwich_1",
				Title:       input.Title,
				Description: input.Description,
				Type:        input.Type,
				Images:      input.Images,
				Ingredients: []string{"Bread", "Cheese", "Butter"},
				UserID:      "user_1",
				Overall:     8.5,
				CreatedAt:   time.Now(),
			}, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/sandwiches", strings.NewReader(validSandwichBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user_1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "sandwich_1" || resp["overall_rating"] != 8.5 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSandwichHandler_Create_MissingFieldsReportedPerField(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		submitFn: func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	body := strings.NewReader(`{"title":"Just a title","type":"RESTAURANT"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sandwiches", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Create(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	details, ok := resp["details"].([]any)
	if !ok || len(details) == 0 {
		t.Fatalf("expected details list, got %+v", resp)
	}
	fields := map[string]bool{}
	for _, d := range details {
		issue := d.(map[string]any)
		fields[issue["field"].(string)] = true
	}
	for _, want := range []string{"description", "restaurant_name", "overall_rating", "images"} {
		if !fields[want] {
			t.Fatalf("expected issue for %q, got %v", want, fields)
		}
	}
}

func TestSandwichHandler_Create_ServiceValidationError(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		submitFn: func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
			verr := &domain.ValidationError{}
			return nil, verr.Add("overall_rating", "must be between 1 and 10")
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/sandwiches", strings.NewReader(validSandwichBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Create(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSandwichHandler_Create_StorageUnavailable(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		submitFn: func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
			return nil, domain.ErrStorageUnavailable
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/sandwiches", strings.NewReader(validSandwichBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Create(c)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSandwichHandler_Create_UnknownIdentity(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		submitFn: func(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
			return nil, domain.ErrIdentityNotFound
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/sandwiches", strings.NewReader(validSandwichBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "ghost")

	_ = handler.Create(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSandwichHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		getFn: func(ctx context.Context, id string) (*ports.SandwichDetail, error) {
			return nil, domain.ErrSandwichNotFound
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	_ = handler.Get(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSandwichHandler_Get_RoundsAverageForDisplay(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		getFn: func(ctx context.Context, id string) (*ports.SandwichDetail, error) {
			return &ports.SandwichDetail{
				ID:             id,
				Title:          "Cubano",
				Type:           string(domain.TypeRestaurant),
				AuthorName:     "Alice",
				AverageOverall: 8.333333,
				HasRatings:     true,
				Ratings: []ports.RatingView{
					{Overall: 8.3, Taste: 8, Texture: 9, Presentation: 8, Composite: 8.325},
				},
			}, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches/sandwich_1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sandwich_1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["average_rating"] != 8.3 {
		t.Fatalf("expected rounded average 8.3, got %v", resp["average_rating"])
	}
	ratings := resp["ratings"].([]any)
	if ratings[0].(map[string]any)["composite"] != 8.3 {
		t.Fatalf("expected rounded composite, got %v", ratings[0])
	}
}

func TestSandwichHandler_Discover_NullAverageWhenUnrated(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		discoverFn: func(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
			return &ports.DiscoverResult{
				Items: []ports.SandwichSummary{
					{ID: "sandwich_1", Title: "Unrated", AuthorName: "Anonymous"},
				},
				Total: 1,
			}, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Discover(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	item := resp["data"].([]any)[0].(map[string]any)
	if v, present := item["average_rating"]; !present || v != nil {
		t.Fatalf("expected explicit null average, got %v", item)
	}
}

func TestSandwichHandler_Discover_ForwardsQueryParams(t *testing.T) {
	e := newTestEcho()
	var got ports.DiscoverInput
	stub := &stubSandwichService{
		discoverFn: func(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
			got = input
			return &ports.DiscoverResult{}, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches?q=cuban&type=RESTAURANT&sort=rating&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Discover(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Query != "cuban" || got.Type != "RESTAURANT" || got.Sort != ports.SortRating || got.Limit != 5 {
		t.Fatalf("query params not forwarded: %+v", got)
	}
}

func TestSandwichHandler_Discover_MineRequiresAuth(t *testing.T) {
	e := newTestEcho()
	stub := &stubSandwichService{
		discoverFn: func(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewSandwichHandler(stub, 10)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches?mine=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Discover(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSandwichHandler_TopRated_UsesCarouselLimit(t *testing.T) {
	e := newTestEcho()
	var got ports.DiscoverInput
	stub := &stubSandwichService{
		discoverFn: func(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
			got = input
			return &ports.DiscoverResult{}, nil
		},
	}
	handler := NewSandwichHandler(stub, 6)

	req := httptest.NewRequest(http.MethodGet, "/v1/sandwiches/top-rated", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.TopRated(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Sort != ports.SortRating || got.Limit != 6 {
		t.Fatalf("unexpected input: %+v", got)
	}
}
