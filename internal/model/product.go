package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item belonging to exactly one category.
//
// ImagePath is the persisted image reference (empty, a local storage
// key, or an absolute external URL); ImageURL is derived from it on
// every read and never stored.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	InStock     int             `json:"in_stock" gorm:"not null;default:0"`
	ImagePath   string          `json:"image_path,omitempty" gorm:"size:2048"`
	ImageURL    string          `json:"image_url,omitempty" gorm:"-"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// Image returns the tagged interpretation of the persisted image path.
func (p *Product) Image() ImageRef {
	return ParseImageRef(p.ImagePath)
}
