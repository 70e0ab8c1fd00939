package models

import "time"

// Product represents a product in the store.
type Product struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" bson:"name" gorm:"not null"`
	Price     float64   `json:"price" bson:"price" gorm:"check:price >= 0"`
	Category  string    `json:"category" bson:"category"`
	Stock     int       `json:"stock" bson:"stock" gorm:"check:stock >= 0"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProductSummary is the subset of a product embedded in expanded order reads.
type ProductSummary struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Category string  `json:"category" bson:"category"`
}

// Summary returns the fields of p exposed through order expansion.
func (p Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}
}

// CreateProductRequest is the body accepted when creating a product.
// Price and Stock are pointers so that an explicit zero is told apart from a missing field.
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Category string   `json:"category" validate:"required"`
	Stock    *int     `json:"stock" validate:"required,gte=0"`
}

// ProductUpdate carries a partial product update. Nil fields are left untouched.
type ProductUpdate struct {
	Name     *string  `json:"name" validate:"omitempty,min=1"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Category *string  `json:"category" validate:"omitempty,min=1"`
	Stock    *int     `json:"stock" validate:"omitempty,gte=0"`
}

// Empty reports whether the update changes nothing.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Price == nil && u.Category == nil && u.Stock == nil
}

// Apply copies the set fields of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
}
