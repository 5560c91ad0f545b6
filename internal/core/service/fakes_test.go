package service

import (
	"context"
	"sync"

	"github.com/qudalautt/hub/internal/core/domain"
)

// Fake OrderSource
type fakeSource struct {
	mu        sync.Mutex
	orders    []domain.PendingOrder
	err       error
	deleted   []int64
	deleteErr map[int64]error
}

func newFakeSource(orders ...domain.PendingOrder) *fakeSource {
	return &fakeSource{orders: orders, deleteErr: make(map[int64]error)}
}

func (f *fakeSource) PendingOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PendingOrder, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeSource) DeletePending(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	for i, o := range f.orders {
		if o.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSource) setOrders(orders []domain.PendingOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Fake ChangeFeed
type fakeChangeFeed struct {
	ch   chan domain.PendingOrder
	once sync.Once
}

func newFakeChangeFeed() *fakeChangeFeed {
	return &fakeChangeFeed{ch: make(chan domain.PendingOrder, 16)}
}

func (f *fakeChangeFeed) Subscribe(ctx context.Context) (<-chan domain.PendingOrder, error) {
	return f.ch, nil
}

func (f *fakeChangeFeed) Close() error {
	f.once.Do(func() { close(f.ch) })
	return nil
}

func (f *fakeChangeFeed) emit(o domain.PendingOrder) {
	f.ch <- o
}

// Fake PushSender
type fakePush struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (f *fakePush) Send(ctx context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sends = append(f.sends, message)
	return f.err
}

func (f *fakePush) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// Fake LedgerStore
type fakeLedger struct {
	mu        sync.Mutex
	nextID    int64
	txs       []domain.Transaction
	insertErr error
}

func (f *fakeLedger) InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	tx.ID = f.nextID
	f.txs = append(f.txs, tx)
	return tx.ID, nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Transaction, len(f.txs))
	copy(out, f.txs)
	return out, nil
}

func (f *fakeLedger) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var kept []domain.Transaction
	var deleted int64
	for _, tx := range f.txs {
		if _, ok := want[tx.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, tx)
	}
	f.txs = kept
	return deleted, nil
}
