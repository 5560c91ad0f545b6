package tests

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qudalautt/hub/internal/adapter/storage"
	"github.com/qudalautt/hub/internal/clock"
	"github.com/qudalautt/hub/internal/core/domain"
	"github.com/qudalautt/hub/internal/core/service"
)

type testEnv struct {
	redis   *redis.Client
	mysql   *sql.DB
	source  *storage.MySQLAdapter
	changes *storage.RedisAdapter
	cleanup func()
}

type recordingPush struct {
	mu    sync.Mutex
	sends []string
}

func (p *recordingPush) Send(ctx context.Context, title, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, message)
	return nil
}

func (p *recordingPush) countFor(cust string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, msg := range p.sends {
		if strings.Contains(msg, cust) {
			n++
		}
	}
	return n
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/hub?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS transaksi_temp (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			cust VARCHAR(255) NOT NULL,
			produk VARCHAR(255) NOT NULL,
			jenis VARCHAR(255) NOT NULL,
			durasi VARCHAR(255) NOT NULL,
			harga BIGINT NOT NULL,
			status VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transaksi (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			tanggal DATETIME NOT NULL,
			cust VARCHAR(255) NOT NULL,
			produk VARCHAR(255) NOT NULL,
			jenis VARCHAR(255) NOT NULL,
			durasi VARCHAR(255) NOT NULL,
			harga BIGINT NOT NULL,
			pembayaran VARCHAR(64) NOT NULL,
			catatan VARCHAR(255) NULL,
			potongan BIGINT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("schema setup failed: %v", err)
		}
	}

	return &testEnv{
		redis:   rdb,
		mysql:   db,
		source:  storage.NewMySQLAdapter(db),
		changes: storage.NewRedisAdapter(rdb),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestIntegration_OrderIntakeAndConfirm(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	cust := "itest-" + uuid.New().String()

	defer env.mysql.ExecContext(ctx, `DELETE FROM transaksi_temp WHERE cust = ?`, cust)
	defer env.mysql.ExecContext(ctx, `DELETE FROM transaksi WHERE cust = ?`, cust)

	// Insert the pending row the way the storefront does, then announce it.
	res, err := env.mysql.ExecContext(ctx, `
		INSERT INTO transaksi_temp (cust, produk, jenis, durasi, harga, status)
		VALUES (?, 'Netflix', 'Premium', '1 Bulan', 50000, ?)`,
		cust, domain.StatusAwaitingConfirmation)
	if err != nil {
		t.Fatalf("seed pending row: %v", err)
	}
	orderID, _ := res.LastInsertId()

	clk := clock.NewSystem()
	store := service.NewPendingStore()
	dedup := service.NewDeduplicator()
	toasts := service.NewToastQueue(clk)
	defer toasts.Stop()
	push := &recordingPush{}

	feed := service.NewFeed(env.source, env.changes, push, store, dedup, toasts, 200*time.Millisecond)
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("start feed: %v", err)
	}

	if err := env.changes.PublishPending(ctx, domain.PendingOrder{
		ID: orderID, Customer: cust, Product: "Netflix", Category: "Premium",
		Duration: "1 Bulan", Price: 50000, Status: domain.StatusAwaitingConfirmation,
	}); err != nil {
		t.Fatalf("publish insert event: %v", err)
	}

	// The order is surfaced once even though both the change feed and the
	// poll observe it.
	waitFor(t, 5*time.Second, func() bool {
		if _, ok := store.Get(orderID); !ok {
			return false
		}
		return push.countFor(cust) >= 1
	})
	time.Sleep(500 * time.Millisecond) // at least one more poll cycle

	var mine []domain.Toast
	for _, toast := range toasts.List() {
		if toast.Message == cust+" membuat pesanan baru" {
			mine = append(mine, toast)
		}
	}
	if len(mine) != 1 {
		t.Errorf("expected exactly one toast for the order, got %d", len(mine))
	}
	if got := push.countFor(cust); got != 1 {
		t.Errorf("expected exactly one push dispatch, got %d", got)
	}

	// Confirm the order into the ledger.
	workflow := service.NewWorkflow(env.source, env.source, store, toasts, clk)
	confirmRes, err := workflow.Confirm(ctx, orderID, service.ConfirmInput{
		Payment:  domain.PaymentQRIS,
		Discount: 5000,
	})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmRes.State != service.StateConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmRes.State)
	}

	var harga, potongan int64
	var pembayaran string
	err = env.mysql.QueryRowContext(ctx, `
		SELECT harga, COALESCE(potongan, 0), pembayaran FROM transaksi WHERE id = ?`,
		confirmRes.Transaction.ID,
	).Scan(&harga, &potongan, &pembayaran)
	if err != nil {
		t.Fatalf("verify ledger row: %v", err)
	}
	if harga != 50000 || potongan != 5000 || pembayaran != "QRIS" {
		t.Errorf("unexpected ledger row: harga=%d potongan=%d pembayaran=%s", harga, potongan, pembayaran)
	}

	var remaining int
	env.mysql.QueryRowContext(ctx, `SELECT COUNT(*) FROM transaksi_temp WHERE id = ?`, orderID).Scan(&remaining)
	if remaining != 0 {
		t.Error("expected pending row deleted after confirm")
	}
	if _, ok := store.Get(orderID); ok {
		t.Error("expected order removed from the local store")
	}

	feed.Stop()
}

func TestIntegration_CancelLeavesNoLedgerEntry(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	cust := "itest-cancel-" + uuid.New().String()

	defer env.mysql.ExecContext(ctx, `DELETE FROM transaksi_temp WHERE cust = ?`, cust)

	res, err := env.mysql.ExecContext(ctx, `
		INSERT INTO transaksi_temp (cust, produk, jenis, durasi, harga, status)
		VALUES (?, 'Spotify', 'Famplan', '1 Bulan', 25000, ?)`,
		cust, domain.StatusAwaitingConfirmation)
	if err != nil {
		t.Fatalf("seed pending row: %v", err)
	}
	orderID, _ := res.LastInsertId()

	clk := clock.NewSystem()
	store := service.NewPendingStore()
	toasts := service.NewToastQueue(clk)
	defer toasts.Stop()

	store.InsertOne(domain.PendingOrder{ID: orderID, Customer: cust, Price: 25000})

	workflow := service.NewWorkflow(env.source, env.source, store, toasts, clk)
	if err := workflow.Cancel(ctx, orderID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	var count int
	env.mysql.QueryRowContext(ctx, `SELECT COUNT(*) FROM transaksi WHERE cust = ?`, cust).Scan(&count)
	if count != 0 {
		t.Error("expected no ledger entry for a cancelled order")
	}
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d", store.Count())
	}

	// Cancelling again is a no-op.
	if err := workflow.Cancel(ctx, orderID); err != nil {
		t.Errorf("expected repeat cancel to be a no-op, got %v", err)
	}
}
