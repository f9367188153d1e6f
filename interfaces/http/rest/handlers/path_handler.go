package handlers

import (
	"net/http"
	"strconv"

	"learnpath-backend/application/services"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/pkg/auth"
	"learnpath-backend/pkg/common"
	"learnpath-backend/pkg/errors"
	"learnpath-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// PathHandler handles learning-path HTTP requests
type PathHandler struct {
	service      *services.ProgressService
	logger       *zap.Logger
	errorHandler *errors.ErrorHandler
}

// NewPathHandler creates a new path handler
func NewPathHandler(service *services.ProgressService, logger *zap.Logger, errorHandler *errors.ErrorHandler) *PathHandler {
	return &PathHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// StorePathRequest represents the request body for storing a full path tree.
// Ids are externally allocated. Item rating counters are written exactly as
// supplied; clients editing structure must echo the existing values back.
type StorePathRequest struct {
	Name        string                `json:"name" validate:"required,min=1,max=200"`
	Description string                `json:"description,omitempty"`
	Sections    []StoreSectionRequest `json:"sections" validate:"dive"`
}

// StoreSectionRequest is one section within a StorePathRequest
type StoreSectionRequest struct {
	ID          int64              `json:"id" validate:"required"`
	Name        string             `json:"name" validate:"required,min=1,max=200"`
	Description string             `json:"description,omitempty"`
	Sequence    int64              `json:"sequence"`
	Items       []StoreItemRequest `json:"items" validate:"dive"`
}

// StoreItemRequest is one item within a StoreSectionRequest
type StoreItemRequest struct {
	ID          int64  `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty"`
	Sequence    int64  `json:"sequence"`
	URL         string `json:"url,omitempty"`
	RatingCount int64  `json:"ratingCount" validate:"gte=0"`
	RatingTotal int64  `json:"ratingTotal"`
}

// PathResponse is the JSON shape of a loaded path tree
type PathResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Completion  *float64          `json:"completion,omitempty"`
	Sections    []SectionResponse `json:"sections"`
}

// SectionResponse is one section within a PathResponse
type SectionResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Sequence    int64          `json:"sequence"`
	Completion  *float64       `json:"completion,omitempty"`
	Items       []ItemResponse `json:"items"`
}

// ItemResponse is the JSON shape of a single item
type ItemResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Sequence      int64    `json:"sequence"`
	URL           string   `json:"url"`
	RatingCount   int64    `json:"ratingCount"`
	RatingTotal   int64    `json:"ratingTotal"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	UserRating    *int64   `json:"userRating,omitempty"`
	Completed     *bool    `json:"completed,omitempty"`
}

// ListPaths handles GET /paths
func (h *PathHandler) ListPaths(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListPathSummaries(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summaries)
}

// GetPath handles GET /paths/{pathID}
func (h *PathHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	pathID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	path, err := h.service.LoadPath(r.Context(), pathID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPathResponse(path))
}

// GetPathProgress handles GET /paths/{pathID}/progress, returning the tree
// with the calling user's feedback and completion ratios attached
func (h *PathHandler) GetPathProgress(w http.ResponseWriter, r *http.Request) {
	pathID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	path, err := h.service.LoadForUser(r.Context(), pathID, user.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPathResponse(path))
}

// StorePath handles PUT /paths/{pathID}: create or update a path and all
// included sections and items via a full subtree replace
func (h *PathHandler) StorePath(w http.ResponseWriter, r *http.Request) {
	pathID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req StorePathRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	path := toPathEntity(pathID, req)
	if err := h.service.StorePath(r.Context(), path); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Path stored",
		zap.Int64("pathID", pathID),
		zap.Int("sections", len(path.Sections)),
	)
	common.RespondJSON(w, http.StatusOK, toPathResponse(path))
}

// pathID parses the {pathID} URL parameter
func (h *PathHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "pathID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid path id")
		return 0, false
	}
	return id, true
}

func toPathEntity(pathID int64, req StorePathRequest) *entities.LearningPath {
	path := entities.NewLearningPath(pathID, req.Name, req.Description)
	for _, s := range req.Sections {
		section := entities.NewLearningSection(s.ID, pathID, s.Name, s.Description, s.Sequence)
		for _, it := range s.Items {
			section.Items = append(section.Items, &entities.LearningItem{
				ID:          it.ID,
				SectionID:   s.ID,
				PathID:      pathID,
				Name:        it.Name,
				Description: it.Description,
				Sequence:    it.Sequence,
				URL:         it.URL,
				RatingCount: it.RatingCount,
				RatingTotal: it.RatingTotal,
			})
		}
		path.Sections = append(path.Sections, section)
	}
	return path
}

func toPathResponse(path *entities.LearningPath) PathResponse {
	resp := PathResponse{
		ID:          path.ID,
		Name:        path.Name,
		Description: path.Description,
		Completion:  path.Completion,
		Sections:    make([]SectionResponse, 0, len(path.Sections)),
	}
	for _, s := range path.Sections {
		section := SectionResponse{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Sequence:    s.Sequence,
			Completion:  s.Completion,
			Items:       make([]ItemResponse, 0, len(s.Items)),
		}
		for _, it := range s.Items {
			section.Items = append(section.Items, toItemResponse(it))
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp
}

func toItemResponse(item *entities.LearningItem) ItemResponse {
	resp := ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Sequence:    item.Sequence,
		URL:         item.URL,
		RatingCount: item.RatingCount,
		RatingTotal: item.RatingTotal,
		UserRating:  item.UserRating,
		Completed:   item.Completed,
	}
	if avg, ok := item.AverageRating(); ok {
		resp.AverageRating = &avg
	}
	return resp
}
