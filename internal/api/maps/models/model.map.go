package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MapDimensions kích thước bản đồ trong metadata
type MapDimensions struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Unit   string  `json:"unit" bson:"unit"`
}

// MapMetadata thông tin mô tả của bản đồ
type MapMetadata struct {
	Author      string         `json:"author" bson:"author"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Version     string         `json:"version,omitempty" bson:"version,omitempty"`
	Dimensions  *MapDimensions `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
}

// Map định nghĩa mô hình bản đồ mặt bằng.
// Features là mảng nhúng, mọi thao tác trên phần tử đều ghi lại toàn bộ mảng.
type Map struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name" index:"single"`
	Type      string             `json:"type" bson:"type" default:"FeatureCollection"`
	Tags      []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Metadata  *MapMetadata       `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Features  []Feature          `json:"features" bson:"features"`
	OwnerID   primitive.ObjectID `json:"ownerId,omitempty" bson:"ownerId,omitempty" index:"single"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}
