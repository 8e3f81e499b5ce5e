// Package rest exposes the recommendation service over HTTP.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/usecase"
)

type Handler struct {
	recommender usecase.RecommendUsecase
	logger      *slog.Logger
}

func NewHandler(recommender usecase.RecommendUsecase, logger *slog.Logger) *Handler {
	return &Handler{recommender: recommender, logger: logger}
}

// RegisterRoutes mounts the public endpoints on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/recommend", h.Recommend)
}

type recommendRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type recommendedAssessment struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	TestType        []string `json:"test_type"`
}

type recommendResponse struct {
	RecommendationID string                  `json:"recommendation_id"`
	Recommended      []recommendedAssessment `json:"recommended_assessments"`
}

// Health reports liveness.
// (GET /health)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Recommend runs the full pipeline for one query.
// (POST /recommend)
func (h *Handler) Recommend(ctx echo.Context) error {
	var req recommendRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	output, err := h.recommender.Execute(ctx.Request().Context(), usecase.RecommendInput{
		Query: req.Query,
		K:     req.K,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuery):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "query must not be empty"})
		case errors.Is(err, domain.ErrTotalRetrievalFailure):
			h.logger.Error("recommendation_unavailable", slog.String("error", err.Error()))
			return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "retrieval backend unavailable"})
		default:
			h.logger.Error("recommendation_failed", slog.String("error", err.Error()))
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	recommended := make([]recommendedAssessment, 0, len(output.Items))
	for _, item := range output.Items {
		recommended = append(recommended, recommendedAssessment{
			URL:             item.Assessment.CanonicalURL,
			Name:            item.Assessment.Name,
			AdaptiveSupport: yesNo(item.Assessment.AdaptiveSupported),
			Description:     item.Assessment.Description,
			Duration:        item.Assessment.DurationMinutes,
			RemoteSupport:   yesNo(item.Assessment.RemoteSupported),
			TestType:        item.Assessment.DomainNames(),
		})
	}

	return ctx.JSON(http.StatusOK, recommendResponse{
		RecommendationID: output.RecommendationID,
		Recommended:      recommended,
	})
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
