package tankers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/board", h.ShowBoard)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/move", h.Move)
}

type tankerRequest struct {
	Registration   string  `json:"registration" validate:"required,min=2"`
	CapacityLiters float64 `json:"capacity_liters" validate:"required,gt=0"`
	Status         string  `json:"status"`
	DriverID       *int64  `json:"driver_id"`
	Version        int64   `json:"version"`
}

type moveRequest struct {
	Column  string `json:"column" validate:"required"`
	Version int64  `json:"version"`
}

type listResponse struct {
	Items []Tanker `json:"items"`
	Total int      `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	filters := shared.FiltersFromQuery(r.URL.Query())

	items, total, err := h.service.List(r.Context(), owner, filters)
	if err != nil {
		h.logger.Error("list tankers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Tanker{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *Handler) ShowBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.GetBoard(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.logger.Error("load board", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, board)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	tanker, err := h.service.Get(r.Context(), shared.OwnerFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tanker)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req tankerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	created, err := h.service.Create(r.Context(), Tanker{
		OwnerID:        shared.OwnerFromContext(r.Context()),
		Registration:   req.Registration,
		CapacityLiters: req.CapacityLiters,
		Status:         req.Status,
		DriverID:       req.DriverID,
	})
	if err != nil {
		h.logger.Error("create tanker", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req tankerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	updated, err := h.service.Update(r.Context(), Tanker{
		ID:             id,
		OwnerID:        shared.OwnerFromContext(r.Context()),
		Registration:   req.Registration,
		CapacityLiters: req.CapacityLiters,
		Status:         req.Status,
		DriverID:       req.DriverID,
	}, req.Version)
	if err != nil {
		if errors.Is(err, httpx.ErrStaleVersion) {
			httpx.StaleVersion(w, updated)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req moveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	result, err := h.service.Move(r.Context(), shared.OwnerFromContext(r.Context()), id, req.Column, req.Version)
	if err != nil {
		if errors.Is(err, httpx.ErrStaleVersion) {
			httpx.StaleVersion(w, result.Tanker)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	if !result.Moved {
		httpx.NoContent(w)
		return
	}
	httpx.JSON(w, http.StatusOK, result.Tanker)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
