package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shelterwood/mnemo/internal/api/shared"
	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/shelterwood/mnemo/internal/platform/logger"
	"github.com/shelterwood/mnemo/internal/service/study"
	"github.com/shelterwood/mnemo/internal/session"
)

// RateItemRequest represents the request body for rating an item.
type RateItemRequest struct {
	Rating          string `json:"rating"                     validate:"required,oneof=again hard good easy"`
	PresentedFormat string `json:"presented_format,omitempty" validate:"omitempty,max=64"`
}

// ReviewRecordResponse represents the scheduling state returned after a rating.
type ReviewRecordResponse struct {
	ItemID             string    `json:"item_id"`
	CollectionID       string    `json:"collection_id"`
	Box                int       `json:"box"`
	Ease               float64   `json:"ease"`
	IntervalDays       int       `json:"interval_days"`
	DueDate            time.Time `json:"due_date"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	TotalReps          int       `json:"total_reps"`
}

// RateItemResponse represents the response body for a rating submission.
type RateItemResponse struct {
	Record     ReviewRecordResponse `json:"record"`
	WasCorrect bool                 `json:"was_correct"`
	Streak     int                  `json:"streak"`
}

// StudyHandler handles study-related HTTP requests: rating items, building
// session batches, and reporting mastery.
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(studyService study.StudyService, logger *slog.Logger) *StudyHandler {
	if studyService == nil {
		panic("studyService cannot be nil for StudyHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// RateItem handles POST /collections/{collectionID}/items/{itemID}/review.
// It applies the authenticated user's rating to one item.
func (h *StudyHandler) RateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	itemID := chi.URLParam(r, "itemID")
	if collectionID == "" || itemID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Collection and item IDs are required")
		return
	}

	var req RateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.studyService.RateItem(r.Context(), userID, collectionID, itemID, study.RatingSubmission{
		Rating:          domain.Rating(req.Rating),
		PresentedFormat: req.PresentedFormat,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("rating applied",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID),
		slog.Int("box", result.Record.Box))

	shared.RespondWithJSON(w, r, http.StatusOK, RateItemResponse{
		Record:     recordToResponse(result.Record),
		WasCorrect: result.WasCorrect,
		Streak:     result.Streak,
	})
}

// GetNextBatch handles GET /collections/{collectionID}/batch.
// Query parameters: mode, scope, chapters, concepts, difficulties.
func (h *StudyHandler) GetNextBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	if collectionID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Collection ID is required")
		return
	}

	req, err := batchRequestFromQuery(collectionID, r.URL.Query())
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, svcErr := h.studyService.GetNextBatch(r.Context(), userID, req)
	if svcErr != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(svcErr), GetSafeErrorMessage(svcErr), svcErr)
		return
	}

	log.Debug("batch served",
		slog.String("user_id", userID.String()),
		slog.String("collection_id", collectionID),
		slog.Int("batch_size", len(result.Entries)))

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetMasteryStats handles GET /collections/{collectionID}/mastery.
func (h *StudyHandler) GetMasteryStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	if collectionID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Collection ID is required")
		return
	}

	summary, err := h.studyService.GetMasteryStats(r.Context(), userID, collectionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("mastery summary served",
		slog.String("user_id", userID.String()),
		slog.String("collection_id", collectionID))

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

func authenticatedUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func recordToResponse(rec *domain.ReviewRecord) ReviewRecordResponse {
	return ReviewRecordResponse{
		ItemID:             rec.ItemID,
		CollectionID:       rec.CollectionID,
		Box:                rec.Box,
		Ease:               rec.Ease,
		IntervalDays:       rec.IntervalDays,
		DueDate:            rec.DueDate,
		ConsecutiveCorrect: rec.ConsecutiveCorrect,
		TotalReps:          rec.TotalReps,
	}
}

// batchRequestFromQuery translates query parameters into a batch request.
// Mode and scope validation is left to the selector; only structurally
// unparseable values are rejected here.
func batchRequestFromQuery(collectionID string, query url.Values) (session.BatchRequest, error) {
	req := session.BatchRequest{
		CollectionID: collectionID,
		Mode:         session.Mode(query.Get("mode")),
		Scope:        session.Scope(query.Get("scope")),
	}

	for _, raw := range splitCSV(query.Get("chapters")) {
		chapter, err := strconv.Atoi(raw)
		if err != nil {
			return session.BatchRequest{}, errors.New("Invalid chapters parameter")
		}
		req.Chapters = append(req.Chapters, chapter)
	}

	req.Concepts = splitCSV(query.Get("concepts"))

	for _, raw := range splitCSV(query.Get("difficulties")) {
		difficulty := domain.Difficulty(raw)
		if !domain.IsValidDifficulty(difficulty) {
			return session.BatchRequest{}, errors.New("Invalid difficulties parameter")
		}
		req.Difficulties = append(req.Difficulties, difficulty)
	}

	return req, nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
