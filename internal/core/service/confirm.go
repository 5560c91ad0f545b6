package service

import (
	"context"
	"fmt"

	"github.com/qudalautt/hub/internal/clock"
	"github.com/qudalautt/hub/internal/core/domain"
	"github.com/qudalautt/hub/internal/port"
)

// ConfirmState is the explicit per-order progress of a confirm or cancel.
type ConfirmState string

const (
	StatePending    ConfirmState = "pending"
	StateConfirming ConfirmState = "confirming"
	StateConfirmed  ConfirmState = "confirmed"
	StateFailed     ConfirmState = "failed"
	StateCancelling ConfirmState = "cancelling"
	StateCancelled  ConfirmState = "cancelled"
)

// ConfirmInput carries the operator's confirm form.
type ConfirmInput struct {
	Payment  domain.PaymentMethod
	Note     string
	Discount int64
}

// ConfirmResult reports the terminal state of a confirm attempt. Transaction
// is set once the ledger insert succeeded, including the reconciliation-hazard
// case where the pending row could not be deleted afterwards.
type ConfirmResult struct {
	State       ConfirmState
	Transaction *domain.Transaction
}

// BatchCancelResult reports a multi-select cancel. The underlying delete is
// not transactional across ids, so partial failure is explicit.
type BatchCancelResult struct {
	Cancelled []int64
	Failed    map[int64]error
}

// Workflow promotes pending orders into the permanent ledger (confirm) or
// discards them (cancel). The ledger write always precedes the pending-row
// delete, and the order leaves the local store only after both succeeded.
type Workflow struct {
	source port.OrderSource
	ledger port.LedgerStore
	store  *PendingStore
	toasts *ToastQueue
	clk    clock.Clock
}

func NewWorkflow(source port.OrderSource, ledger port.LedgerStore, store *PendingStore, toasts *ToastQueue, clk clock.Clock) *Workflow {
	return &Workflow{
		source: source,
		ledger: ledger,
		store:  store,
		toasts: toasts,
		clk:    clk,
	}
}

// Confirm runs Pending → Confirming → {Confirmed, Failed}. A ledger insert
// failure is safe to retry: the pending order is untouched. A pending-row
// delete failure after a successful insert is returned as a distinct
// *domain.ReconciliationError and the order intentionally stays in the store.
func (w *Workflow) Confirm(ctx context.Context, id int64, in ConfirmInput) (ConfirmResult, error) {
	order, ok := w.store.Get(id)
	if !ok {
		return ConfirmResult{State: StatePending}, domain.ErrOrderNotFound
	}

	if in.Payment == "" {
		return ConfirmResult{State: StatePending}, domain.ErrPaymentMethodRequired
	}
	if !in.Payment.Valid() {
		return ConfirmResult{State: StatePending}, domain.ErrInvalidPaymentMethod
	}
	if in.Discount < 0 || in.Discount > order.Price {
		return ConfirmResult{State: StatePending}, domain.ErrInvalidDiscount
	}

	tx := domain.Transaction{
		Date:     w.clk.Now(),
		Customer: order.Customer,
		Product:  order.Product,
		Category: order.Category,
		Duration: order.Duration,
		Price:    order.Price,
		Payment:  in.Payment,
		Note:     in.Note,
		Discount: in.Discount,
	}

	txID, err := w.ledger.InsertTransaction(ctx, tx)
	if err != nil {
		return ConfirmResult{State: StateFailed}, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = txID

	if err := w.source.DeletePending(ctx, id); err != nil {
		return ConfirmResult{State: StateFailed, Transaction: &tx}, &domain.ReconciliationError{
			OrderID:       id,
			TransactionID: txID,
			Err:           err,
		}
	}

	w.store.Remove(id)
	w.toasts.Push("✅ Transaksi berhasil dikonfirmasi", ToastOptions{})
	return ConfirmResult{State: StateConfirmed, Transaction: &tx}, nil
}

// Cancel runs Pending → Cancelling → Cancelled. Cancelling an id no longer
// present anywhere is a no-op success.
func (w *Workflow) Cancel(ctx context.Context, id int64) error {
	if err := w.source.DeletePending(ctx, id); err != nil {
		return fmt.Errorf("delete pending order %d: %w", id, err)
	}
	if w.store.Remove(id) {
		w.toasts.Push("❌ Transaksi dibatalkan", ToastOptions{})
	}
	return nil
}

// CancelBatch applies Cancel to a set of ids as one request, reporting per-id
// failures instead of assuming all-or-nothing.
func (w *Workflow) CancelBatch(ctx context.Context, ids []int64) BatchCancelResult {
	res := BatchCancelResult{Failed: make(map[int64]error)}

	for _, id := range ids {
		if err := w.source.DeletePending(ctx, id); err != nil {
			res.Failed[id] = err
			continue
		}
		w.store.Remove(id)
		res.Cancelled = append(res.Cancelled, id)
	}

	if len(res.Cancelled) > 0 {
		w.toasts.Push("Data dihapus", ToastOptions{})
	}
	return res
}
