package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/transport"
	"github.com/frahmantamala/donation-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateEntry(ctx context.Context, dto CreateEntryDTO, createdBy string) (*Entry, error)
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	RecordPayment(ctx context.Context, entryID int64, dto RecordPaymentDTO, updatedBy string) (*Entry, error)
	DeletePayment(ctx context.Context, entryID int64, paymentIndex int, updatedBy string) (*Entry, error)
	EditPayment(ctx context.Context, entryID int64, paymentIndex int, dto EditPaymentDTO, updatedBy string) (*Entry, error)
	DeleteEntry(ctx context.Context, entryID int64, updatedBy string) error
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

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.CreateEntry(r.Context(), dto, actor)
	if err != nil {
		h.Logger.Error("CreateEntry: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.Service.GetEntry(r.Context(), entryID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := EntryFilter{Limit: 20}

	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = v
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.To = &t
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	entries, err := h.Service.ListEntries(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var dto RecordPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RecordPayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.RecordPayment(r.Context(), entryID, dto, actor)
	if err != nil {
		h.Logger.Error("RecordPayment: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.DeletePayment(r.Context(), entryID, index, actor)
	if err != nil {
		h.Logger.Error("DeletePayment: service error", "error", err, "entry_id", entryID, "payment_index", index)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) EditPayment(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}

	var dto EditPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("EditPayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.EditPayment(r.Context(), entryID, index, dto, actor)
	if err != nil {
		h.Logger.Error("EditPayment: service error", "error", err, "entry_id", entryID, "payment_index", index)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor := internal.ActorFromContext(r.Context())
	if actor == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), entryID, actor); err != nil {
		h.Logger.Error("DeleteEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid payment index")
		return 0, false
	}
	return index, true
}
