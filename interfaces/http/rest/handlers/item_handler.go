package handlers

import (
	"net/http"
	"strconv"

	"learnpath-backend/application/services"
	"learnpath-backend/pkg/auth"
	"learnpath-backend/pkg/common"
	"learnpath-backend/pkg/errors"
	"learnpath-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler handles item and feedback HTTP requests
type ItemHandler struct {
	service      *services.ProgressService
	logger       *zap.Logger
	errorHandler *errors.ErrorHandler
}

// NewItemHandler creates a new item handler
func NewItemHandler(service *services.ProgressService, logger *zap.Logger, errorHandler *errors.ErrorHandler) *ItemHandler {
	return &ItemHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// SubmitFeedbackRequest represents the request body for item feedback
type SubmitFeedbackRequest struct {
	PathID    int64 `json:"pathId" validate:"required"`
	Rating    int64 `json:"rating" validate:"required,gte=1,lte=5"`
	Completed bool  `json:"completed"`
}

// GetItem handles GET /items/{itemID}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.LoadItem(r.Context(), itemID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toItemResponse(item))
}

// SubmitFeedback handles POST /items/{itemID}/feedback: upserts the calling
// user's rating/completion for the item and returns the item with its
// updated aggregates
func (h *ItemHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req SubmitFeedbackRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	item, err := h.service.SubmitFeedback(r.Context(), req.PathID, itemID, user.UserID, req.Rating, req.Completed)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toItemResponse(item))
}

// itemID parses the {itemID} URL parameter
func (h *ItemHandler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id")
		return 0, false
	}
	return id, true
}
