package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qudalautt/hub/internal/core/domain"
	"github.com/qudalautt/hub/internal/port"
)

var (
	ordersObserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_orders_observed_total",
		Help: "New pending orders surfaced for the first time this session.",
	})
	pollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_poll_failures_total",
		Help: "Poll cycles skipped because the fetch failed.",
	})
	dispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_push_dispatch_failures_total",
		Help: "Push notifications that could not be delivered.",
	})
)

// Feed merges two independent observers of the pending-orders source — an
// interval poll returning full snapshots and a change feed delivering one
// insert at a time — into at-most-once new-order alerts. Both drivers write
// into the same store and consult the same deduplicator, so an order is
// alerted exactly once no matter which path sees it first.
type Feed struct {
	source   port.OrderSource
	changes  port.ChangeFeed
	push     port.PushSender
	store    *PendingStore
	dedup    *Deduplicator
	toasts   *ToastQueue
	interval time.Duration
	timeout  time.Duration

	gen     atomic.Uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewFeed(
	source port.OrderSource,
	changes port.ChangeFeed,
	push port.PushSender,
	store *PendingStore,
	dedup *Deduplicator,
	toasts *ToastQueue,
	interval time.Duration,
) *Feed {
	return &Feed{
		source:   source,
		changes:  changes,
		push:     push,
		store:    store,
		dedup:    dedup,
		toasts:   toasts,
		interval: interval,
		timeout:  5 * time.Second,
	}
}

// Start launches the poll and push drivers. The first poll runs immediately so
// the bell is populated without waiting a full interval.
func (f *Feed) Start(ctx context.Context) error {
	if f.started {
		return domain.ErrFeedAlreadyStarted
	}
	f.started = true

	ctx, f.cancel = context.WithCancel(ctx)

	events, err := f.changes.Subscribe(ctx)
	if err != nil {
		f.cancel()
		return fmt.Errorf("subscribe change feed: %w", err)
	}

	f.wg.Add(2)
	go f.pollLoop(ctx)
	go f.pushLoop(ctx, events)
	return nil
}

// Stop cancels the poll timer, closes the subscription and waits for both
// drivers. No callback mutates the store after Stop returns.
func (f *Feed) Stop() {
	if !f.started {
		return
	}
	f.cancel()
	if err := f.changes.Close(); err != nil {
		log.Printf("feed: close change feed: %v", err)
	}
	f.wg.Wait()
}

func (f *Feed) pollLoop(ctx context.Context) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.pollOnce(ctx)
		}
	}
}

// pollOnce fetches a full snapshot and applies it under the generation it was
// issued with. A fetch that fails skips the cycle and keeps the previous
// snapshot; a fetch that resolves after a newer one was applied (or after
// teardown) is discarded with no side effects.
func (f *Feed) pollOnce(ctx context.Context) {
	gen := f.gen.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	orders, err := f.source.PendingOrders(fetchCtx)
	if err != nil {
		pollFailures.Inc()
		log.Printf("feed: poll skipped: %v", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	if !f.store.ApplySnapshot(gen, orders) {
		return
	}
	for _, o := range orders {
		f.handleNew(ctx, o)
	}
}

func (f *Feed) pushLoop(ctx context.Context, events <-chan domain.PendingOrder) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-events:
			if !ok {
				return
			}
			// An event racing with teardown is discarded, not applied.
			if ctx.Err() != nil {
				return
			}
			f.store.InsertOne(o)
			f.handleNew(ctx, o)
		}
	}
}

// handleNew runs the alert fan-out for a single order. The toast is enqueued
// before the push dispatch is issued; the dispatch is fire-and-forget and
// never retried.
func (f *Feed) handleNew(ctx context.Context, o domain.PendingOrder) {
	if ctx.Err() != nil {
		return
	}
	if !f.dedup.CheckAndMark(o.ID) {
		return
	}
	ordersObserved.Inc()

	f.toasts.Push(
		fmt.Sprintf("%s membuat pesanan baru", o.Customer),
		ToastOptions{Duration: OrderToastDuration},
	)

	title := "Transaksi Baru 🚀"
	body := fmt.Sprintf("%s memesan %s (%s) segera cek stokya!", o.Customer, o.Product, o.Category)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()

		if err := f.push.Send(sendCtx, title, body); err != nil {
			dispatchFailures.Inc()
			log.Printf("feed: push dispatch for order %d failed: %v", o.ID, err)
		}
	}()
}
