package domain

import "time"

// StatusAwaitingConfirmation is the only status a pending order carries while it
// sits outside the permanent ledger.
const StatusAwaitingConfirmation = "Menunggu Konfirmasi"

type PaymentMethod string

const (
	PaymentQRIS     PaymentMethod = "QRIS"
	PaymentDANA     PaymentMethod = "DANA"
	PaymentTransfer PaymentMethod = "Transfer"
	PaymentMandiri  PaymentMethod = "Mandiri"
)

// Valid reports whether the payment method is one of the accepted values.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentQRIS, PaymentDANA, PaymentTransfer, PaymentMandiri:
		return true
	}
	return false
}

// PendingOrder is an order awaiting operator confirmation. IDs are assigned by
// the external source and totally ordered.
type PendingOrder struct {
	ID       int64  `json:"id"`
	Customer string `json:"cust"`
	Product  string `json:"produk"`
	Category string `json:"jenis"`
	Duration string `json:"durasi"`
	Price    int64  `json:"harga"`
	Status   string `json:"status"`
}

// Transaction is the immutable ledger record of a confirmed sale. The ID is
// assigned by the ledger on insert.
type Transaction struct {
	ID       int64         `json:"id"`
	Date     time.Time     `json:"tanggal"`
	Customer string        `json:"cust"`
	Product  string        `json:"produk"`
	Category string        `json:"jenis"`
	Duration string        `json:"durasi"`
	Price    int64         `json:"harga"`
	Payment  PaymentMethod `json:"pembayaran"`
	Note     string        `json:"catatan,omitempty"`
	Discount int64         `json:"potongan"`
}

// TransactionFilter narrows and orders ledger listings.
type TransactionFilter struct {
	Customer string
	Payment  PaymentMethod
	SortBy   string // "tanggal" or "harga"; empty means tanggal
	Asc      bool
}
