// Package models - model cửa hàng (Store) thuộc domain stores.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các category hợp lệ của cửa hàng
const (
	StoreCategoryFood        = "food"
	StoreCategoryClothing    = "clothing"
	StoreCategoryElectronics = "electronics"
	StoreCategoryJewelry     = "jewelry"
	StoreCategoryBooks       = "books"
	StoreCategorySports      = "sports"
	StoreCategoryHome        = "home"
	StoreCategoryBeauty      = "beauty"
	StoreCategoryToys        = "toys"
	StoreCategoryServices    = "services"
	StoreCategoryOther       = "other"
)

// StoreLocation vị trí hiển thị của cửa hàng trên bản đồ.
// Metadata bố cục độc lập, không suy ra từ geometry của phần tử.
type StoreLocation struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Store định nghĩa mô hình cửa hàng.
// Cặp (MapID, FeatureID) tham chiếu đúng một phần tử trên đúng một bản đồ;
// phần tử đó mang back-reference properties.storeId trỏ ngược lại cửa hàng này.
type Store struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" index:"single"`
	Floor        string             `json:"floor" bson:"floor"`
	Category     string             `json:"category" bson:"category" index:"single"`
	OpeningHours string             `json:"openingHours" bson:"openingHours"`
	Logo         string             `json:"logo,omitempty" bson:"logo,omitempty"`
	Description  string             `json:"description" bson:"description"`
	MapID        primitive.ObjectID `json:"mapId" bson:"mapId" index:"single"`
	FeatureID    string             `json:"featureId" bson:"featureId"`
	Location     *StoreLocation     `json:"location,omitempty" bson:"location,omitempty"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	Website      string             `json:"website,omitempty" bson:"website,omitempty"`
	OwnerID      primitive.ObjectID `json:"ownerId,omitempty" bson:"ownerId,omitempty" index:"single"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
}
