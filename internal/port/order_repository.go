package port

import (
	"context"

	"github.com/qudalautt/hub/internal/core/domain"
)

type OrderSource interface {
	// PendingOrders fetches the full set of orders awaiting confirmation,
	// ordered by id descending.
	PendingOrders(ctx context.Context) ([]domain.PendingOrder, error)

	// DeletePending removes a pending row by id; deleting an absent row is a no-op.
	DeletePending(ctx context.Context, id int64) error
}

type LedgerStore interface {
	// InsertTransaction appends a confirmed transaction and returns the
	// ledger-assigned id.
	InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error)

	// ListTransactions returns ledger rows matching the filter.
	ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error)

	// DeleteTransactions removes ledger rows by id and reports how many were deleted.
	DeleteTransactions(ctx context.Context, ids []int64) (int64, error)
}

type CatalogStore interface {
	// ListProducts returns catalog rows ordered by product name.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// InsertPromo stores a promo price and returns its id.
	InsertPromo(ctx context.Context, p domain.Promo) (int64, error)
}
