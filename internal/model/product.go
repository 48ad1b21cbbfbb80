package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Navigation holds a product's three-level category path as stored in the catalog.
// categoryMessage1 is the top-level department, categoryMessage2 the product group,
// categoryMessage3 the brand/series leaf.
type Navigation struct {
	CategoryID       string `json:"categoryId" bson:"categoryId"`
	CategoryMessage1 string `json:"categoryMessage1" bson:"categoryMessage1"`
	CategoryMessage2 string `json:"categoryMessage2" bson:"categoryMessage2"`
	CategoryMessage3 string `json:"categoryMessage3" bson:"categoryMessage3"`
}

// Product is a catalog document. The assistant only reads products; the catalog
// is owned and refreshed by the storefront backend.
type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Keyword       []string           `json:"keyword" bson:"keyword"`
	Price         float64            `json:"price" bson:"price"`
	SalePrice     float64            `json:"salePrice" bson:"salePrice"`
	StockQuantity int                `json:"stockQuantity" bson:"stockQuantity"`
	ProductActive bool               `json:"productActive" bson:"productActive"`
	Rating        float64            `json:"rating" bson:"rating"`
	TotalReviews  int                `json:"totalReviews" bson:"totalReviews"`
	ProductView   int                `json:"productView" bson:"productView"`
	Navigation    Navigation         `json:"navigation" bson:"navigation"`
	Images        []string           `json:"images,omitempty" bson:"images,omitempty"`
}

// DiscountPercent returns the rounded discount percentage between the list
// price and the sale price, or 0 when the product is not discounted.
func (p *Product) DiscountPercent() int {
	if p.Price <= 0 || p.SalePrice >= p.Price {
		return 0
	}
	return int((p.Price-p.SalePrice)/p.Price*100 + 0.5)
}
