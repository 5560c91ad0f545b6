package domain

// Product is a catalog row used to pre-fill the promo form.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"nama_produk"`
	Category string `json:"kategori"`
	Duration string `json:"durasi"`
}

// Promo is a discounted price for a catalog product.
type Promo struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"produk_id"`
	PromoPrice int64  `json:"harga_promo"`
	Category   string `json:"kategori"`
	Duration   string `json:"durasi"`
}
