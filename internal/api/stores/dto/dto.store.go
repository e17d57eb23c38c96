// Package storesdto - các cấu trúc đầu vào cho domain stores.
package storesdto

import (
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
)

// StoreCreateInput đầu vào tạo cửa hàng mới kèm liên kết với phần tử bản đồ.
// MapID + FeatureID xác định phần tử sẽ được liên kết.
type StoreCreateInput struct {
	Name         string                `json:"name" validate:"required,no_xss"`
	Floor        string                `json:"floor" validate:"required"`
	Category     string                `json:"category" validate:"required,oneof=food clothing electronics jewelry books sports home beauty toys services other"`
	OpeningHours string                `json:"openingHours" validate:"required"`
	Logo         string                `json:"logo" validate:"omitempty"`
	Description  string                `json:"description" validate:"required"`
	MapID        string                `json:"mapId" validate:"required" transform:"type=str_objectid,map=MapID"`
	FeatureID    string                `json:"featureId" validate:"required"`
	Location     *models.StoreLocation `json:"location" validate:"required"`
	Phone        string                `json:"phone" validate:"omitempty"`
	Email        string                `json:"email" validate:"omitempty,email"`
	Website      string                `json:"website" validate:"omitempty,url"`
}

// StoreUpdateInput đầu vào cập nhật cửa hàng.
// Field pointer nil nghĩa là client không gửi. MapID/FeatureID thay đổi
// sẽ kích hoạt luồng relink (gỡ liên kết cũ, thiết lập liên kết mới).
type StoreUpdateInput struct {
	Name         *string               `json:"name" validate:"omitempty,no_xss"`
	Floor        *string               `json:"floor" validate:"omitempty"`
	Category     *string               `json:"category" validate:"omitempty,oneof=food clothing electronics jewelry books sports home beauty toys services other"`
	OpeningHours *string               `json:"openingHours" validate:"omitempty"`
	Logo         *string               `json:"logo" validate:"omitempty"`
	Description  *string               `json:"description" validate:"omitempty"`
	MapID        *string               `json:"mapId" validate:"omitempty" transform:"type=str_objectid,map=MapID,optional"`
	FeatureID    *string               `json:"featureId" validate:"omitempty"`
	Location     *models.StoreLocation `json:"location" validate:"omitempty"`
	Phone        *string               `json:"phone" validate:"omitempty"`
	Email        *string               `json:"email" validate:"omitempty,email"`
	Website      *string               `json:"website" validate:"omitempty,url"`
}
