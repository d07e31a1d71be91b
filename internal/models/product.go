package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Image is either the stored upload name or an
// external URL.
type Product struct {
	Model
	Name        string             `gorm:"not null" json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string             `json:"image"`
	Category    string             `gorm:"index" json:"category"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
}

// DynamicAttribute is a named property shared by all products.
type DynamicAttribute struct {
	Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// ProductAttribute links a product to an attribute with a value.
type ProductAttribute struct {
	ProductID   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"product_id"`
	AttributeID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"attribute_id"`
	Value       string           `gorm:"not null" json:"value"`
	Attribute   DynamicAttribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}

// ProductListing is one row of the catalog listing: the product columns plus
// its attributes flattened into "name: value, ..." form.
type ProductListing struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	Attributes  string          `json:"attributes"`
	ImageURL    string          `gorm:"-" json:"image_url"`
}
