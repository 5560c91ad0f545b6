package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/qudalautt/hub/internal/core/domain"
	"github.com/qudalautt/hub/internal/core/service"
	"github.com/qudalautt/hub/internal/port"
)

// HTTPHandler exposes the operator surface: the notification bell, the
// confirm/cancel actions, the ledger list page and the promo form.
type HTTPHandler struct {
	store    *service.PendingStore
	toasts   *service.ToastQueue
	workflow *service.Workflow
	ledger   port.LedgerStore
	catalog  port.CatalogStore
}

func NewHTTPHandler(
	store *service.PendingStore,
	toasts *service.ToastQueue,
	workflow *service.Workflow,
	ledger port.LedgerStore,
	catalog port.CatalogStore,
) *HTTPHandler {
	return &HTTPHandler{
		store:    store,
		toasts:   toasts,
		workflow: workflow,
		ledger:   ledger,
		catalog:  catalog,
	}
}

// Register attaches all operator routes to the router.
func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/notifications", h.Notifications).Methods(http.MethodGet)
	r.HandleFunc("/orders/cancel", h.CancelBatch).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id:[0-9]+}/confirm", h.Confirm).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id:[0-9]+}", h.Cancel).Methods(http.MethodDelete)
	r.HandleFunc("/toasts", h.Toasts).Methods(http.MethodGet)
	r.HandleFunc("/toasts/{id:[0-9]+}", h.DismissToast).Methods(http.MethodDelete)
	r.HandleFunc("/transactions", h.Transactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.DeleteTransactions).Methods(http.MethodDelete)
	r.HandleFunc("/products", h.Products).Methods(http.MethodGet)
	r.HandleFunc("/promos", h.CreatePromo).Methods(http.MethodPost)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Notifications serves the bell affordance: live pending count plus the
// dropdown rows.
func (h *HTTPHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  h.store.Count(),
		"orders": h.store.List(),
	})
}

type confirmRequest struct {
	Payment  string `json:"pembayaran"`
	Note     string `json:"catatan"`
	Discount int64  `json:"potongan"`
}

func (h *HTTPHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.workflow.Confirm(r.Context(), id, service.ConfirmInput{
		Payment:  domain.PaymentMethod(req.Payment),
		Note:     req.Note,
		Discount: req.Discount,
	})
	if err != nil {
		var recErr *domain.ReconciliationError
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrPaymentMethodRequired),
			errors.Is(err, domain.ErrInvalidPaymentMethod),
			errors.Is(err, domain.ErrInvalidDiscount):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &recErr):
			// Ledger row exists but the pending row is still there: the
			// operator has to intervene, a blind retry would duplicate it.
			writeJSON(w, http.StatusConflict, errorResponse{
				Error: recErr.Error(),
				Code:  "reconciliation_hazard",
			})
		default:
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error: err.Error(),
				Code:  "ledger_error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":       res.State,
		"transaction": res.Transaction,
	})
}

func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	if err := h.workflow.Cancel(r.Context(), id); err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": service.StateCancelled})
}

type batchCancelRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *HTTPHandler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	var req batchCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids required"})
		return
	}

	res := h.workflow.CancelBatch(r.Context(), req.IDs)

	failed := make(map[string]string, len(res.Failed))
	for id, err := range res.Failed {
		failed[strconv.FormatInt(id, 10)] = err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cancelled": res.Cancelled,
		"failed":    failed,
	})
}

func (h *HTTPHandler) Toasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.toasts.List())
}

func (h *HTTPHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	h.toasts.Dismiss(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.TransactionFilter{
		Customer: q.Get("cust"),
		Payment:  domain.PaymentMethod(q.Get("pembayaran")),
		SortBy:   q.Get("sort"),
		Asc:      q.Get("order") == "asc",
	}

	txs, err := h.ledger.ListTransactions(r.Context(), f)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type deleteTransactionsRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *HTTPHandler) DeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var req deleteTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids required"})
		return
	}

	deleted, err := h.ledger.DeleteTransactions(r.Context(), req.IDs)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	h.toasts.Push("Data dihapus", service.ToastOptions{})
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *HTTPHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var p domain.Promo
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if p.ProductID == 0 || p.PromoPrice <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "produk_id and harga_promo required"})
		return
	}

	id, err := h.catalog.InsertPromo(r.Context(), p)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, p)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
