package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/qudalautt/hub/internal/core/domain"
)

// MySQLAdapter backs both external collaborators: the pending-orders source
// (transaksi_temp) and the append-only ledger (transaksi), plus the catalog
// tables behind the promo form.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) PendingOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, cust, produk, jenis, durasi, harga, status
		FROM transaksi_temp
		WHERE status = ?
		ORDER BY id DESC`,
		domain.StatusAwaitingConfirmation,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.PendingOrder
	for rows.Next() {
		var o domain.PendingOrder
		if err := rows.Scan(&o.ID, &o.Customer, &o.Product, &o.Category, &o.Duration, &o.Price, &o.Status); err != nil {
			return nil, fmt.Errorf("scan pending order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// DeletePending removes a pending row. Deleting an id that is already gone is
// a no-op, which keeps cancel idempotent.
func (m *MySQLAdapter) DeletePending(ctx context.Context, id int64) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM transaksi_temp WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pending order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	note := sql.NullString{String: tx.Note, Valid: tx.Note != ""}
	discount := sql.NullInt64{Int64: tx.Discount, Valid: tx.Discount != 0}

	res, err := m.db.ExecContext(ctx, `
		INSERT INTO transaksi (tanggal, cust, produk, jenis, durasi, harga, pembayaran, catatan, potongan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Date, tx.Customer, tx.Product, tx.Category, tx.Duration, tx.Price,
		string(tx.Payment), note, discount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

func (m *MySQLAdapter) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `
		SELECT id, tanggal, cust, produk, jenis, durasi, harga, pembayaran,
		       COALESCE(catatan, ''), COALESCE(potongan, 0)
		FROM transaksi`

	var where []string
	var args []any
	if f.Customer != "" {
		where = append(where, "cust LIKE ?")
		args = append(args, "%"+f.Customer+"%")
	}
	if f.Payment != "" {
		where = append(where, "pembayaran = ?")
		args = append(args, string(f.Payment))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	sortCol := "tanggal"
	if f.SortBy == "harga" {
		sortCol = "harga"
	}
	dir := "DESC"
	if f.Asc {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortCol, dir)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var payment string
		if err := rows.Scan(&t.ID, &t.Date, &t.Customer, &t.Product, &t.Category,
			&t.Duration, &t.Price, &payment, &t.Note, &t.Discount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Payment = domain.PaymentMethod(payment)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteTransactions deletes ledger rows by id in a single statement and
// reports how many rows were actually removed.
func (m *MySQLAdapter) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := m.db.ExecContext(ctx,
		"DELETE FROM transaksi WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	affected, _ := res.RowsAffected()
	return affected, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, nama_produk, COALESCE(kategori, ''), COALESCE(durasi, '')
		FROM products
		ORDER BY nama_produk ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Duration); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) InsertPromo(ctx context.Context, p domain.Promo) (int64, error) {
	res, err := m.db.ExecContext(ctx, `
		INSERT INTO promo (produk_id, harga_promo, kategori, durasi)
		VALUES (?, ?, ?, ?)`,
		p.ProductID, p.PromoPrice, p.Category, p.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("insert promo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("promo id: %w", err)
	}
	return id, nil
}
