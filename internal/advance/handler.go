package advance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/transport"
	"github.com/frahmantamala/donation-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateAdvance(ctx context.Context, dto CreateAdvanceDTO, createdBy string) (*AdvancePayment, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ApplyAdvance(ctx context.Context, entryID, userID int64, updatedBy string) (*ApplyResult, error)
	ListAdvances(ctx context.Context, userID *int64, limit, offset int) ([]*AdvancePayment, error)
	ListUsages(ctx context.Context, userID int64) ([]*Usage, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateAdvance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateAdvance(r.Context(), dto, actor)
	if err != nil {
		h.Logger.Error("CreateAdvance: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	balance, err := h.Service.GetBalance(r.Context(), userID)
	if err != nil {
		h.Logger.Error("GetBalance: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	})
}

func (h *Handler) ApplyAdvance(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryIDStr := chi.URLParam(r, "id")
	entryID, err := strconv.ParseInt(entryIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	var dto ApplyAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ApplyAdvance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.ApplyAdvance(r.Context(), entryID, dto.UserID, actor)
	if err != nil {
		h.Logger.Error("ApplyAdvance: service error", "error", err, "entry_id", entryID, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	var userID *int64

	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = &id
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}

	advances, err := h.Service.ListAdvances(r.Context(), userID, limit, offset)
	if err != nil {
		h.Logger.Error("ListAdvances: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advances": advances,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) ListUsages(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	usages, err := h.Service.ListUsages(r.Context(), userID)
	if err != nil {
		h.Logger.Error("ListUsages: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"usages": usages})
}
