package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

// EngagementHandler handles likes and comment threads on sandwiches.
type EngagementHandler struct {
	service ports.EngagementService
}

func NewEngagementHandler(service ports.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

type likeStateResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"like_count"`
}

type addCommentRequest struct {
	Content  string `json:"content" validate:"required,max=500"`
	ParentID string `json:"parent_id"`
}

type commentResponse struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	AuthorName string            `json:"author_name"`
	CreatedAt  time.Time         `json:"created_at"`
	Replies    []commentResponse `json:"replies"`
}

type commentListResponse struct {
	Data []commentResponse `json:"data"`
}

// ToggleLike handles POST /v1/sandwiches/:id/like.
//
// @Summary      Toggle the caller's like on a sandwich
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sandwich id"
// @Success      200  {object}  likeStateResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/sandwiches/{id}/like [post]
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	userID, err := requireCallerID(c)
	if err != nil {
		return err
	}
	state, err := h.service.ToggleLike(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrSandwichNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "sandwich not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to toggle like"})
	}
	return c.JSON(http.StatusOK, likeStateResponse{Liked: state.Liked, Count: state.Count})
}

// LikeStatus handles GET /v1/sandwiches/:id/like.
//
// @Summary      Like count and whether the caller has liked
// @Tags         engagement
// @Produce      json
// @Param        id   path      string  true  "Sandwich id"
// @Success      200  {object}  likeStateResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/sandwiches/{id}/like [get]
func (h *EngagementHandler) LikeStatus(c echo.Context) error {
	state, err := h.service.LikeStatus(c.Request().Context(), c.Param("id"), callerID(c))
	if err != nil {
		if errors.Is(err, domain.ErrSandwichNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "sandwich not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, likeStateResponse{Liked: state.Liked, Count: state.Count})
}

// AddComment handles POST /v1/sandwiches/:id/comments.
//
// @Summary      Comment on a sandwich, optionally replying to a comment
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Sandwich id"
// @Param        body  body      addCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/sandwiches/{id}/comments [post]
func (h *EngagementHandler) AddComment(c echo.Context) error {
	userID, err := requireCallerID(c)
	if err != nil {
		return err
	}
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	comment, err := h.service.AddComment(c.Request().Context(), ports.AddCommentInput{
		SandwichID: c.Param("id"),
		ParentID:   req.ParentID,
		Content:    req.Content,
		UserID:     userID,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}
		if errors.Is(err, domain.ErrSandwichNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "sandwich not found"})
		}
		if errors.Is(err, domain.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "parent comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add comment"})
	}
	return c.JSON(http.StatusCreated, toCommentResponse(*comment))
}

// Comments handles GET /v1/sandwiches/:id/comments.
//
// @Summary      List a sandwich's comment thread
// @Tags         engagement
// @Produce      json
// @Param        id   path      string  true  "Sandwich id"
// @Success      200  {object}  commentListResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/sandwiches/{id}/comments [get]
func (h *EngagementHandler) Comments(c echo.Context) error {
	comments, err := h.service.Comments(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSandwichNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "sandwich not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	data := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		data = append(data, toCommentResponse(cm))
	}
	return c.JSON(http.StatusOK, commentListResponse{Data: data})
}

func toCommentResponse(view ports.CommentView) commentResponse {
	replies := make([]commentResponse, 0, len(view.Replies))
	for _, r := range view.Replies {
		replies = append(replies, toCommentResponse(r))
	}
	return commentResponse{
		ID:         view.ID,
		Content:    view.Content,
		AuthorName: view.AuthorName,
		CreatedAt:  view.CreatedAt,
		Replies:    replies,
	}
}
