package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Publisher     string          `json:"publisher"`
	ISBN          string          `json:"isbn"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	StockQuantity int             `json:"stockQuantity"`
	CoverImageURL string          `json:"coverImageUrl"`
	PageCount     int             `json:"pageCount"`
	Language      string          `json:"language"`
	IsActive      bool            `json:"isActive"`
	SalesCount    int             `json:"salesCount"`
	ViewCount     int             `json:"viewCount"`
	Rating        decimal.Decimal `json:"rating"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
