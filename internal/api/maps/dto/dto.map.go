// Package mapsdto - các cấu trúc đầu vào cho domain maps.
package mapsdto

import (
	models "github.com/devwander/localiza-tech-api/internal/api/maps/models"
)

// MapCreateInput đầu vào tạo bản đồ mới.
// Type để trống sẽ nhận giá trị mặc định "FeatureCollection".
type MapCreateInput struct {
	Name     string              `json:"name" validate:"required,no_xss"`
	Type     string              `json:"type" validate:"omitempty,no_xss"`
	Tags     []string            `json:"tags" validate:"omitempty,dive,no_xss"`
	Metadata *models.MapMetadata `json:"metadata" validate:"omitempty"`
	Features []models.Feature    `json:"features" validate:"omitempty"`
}

// MapUpdateInput đầu vào cập nhật bản đồ.
// Field pointer nil nghĩa là client không gửi, giữ nguyên giá trị hiện có.
type MapUpdateInput struct {
	Name     *string             `json:"name" validate:"omitempty,no_xss"`
	Type     *string             `json:"type" validate:"omitempty,no_xss"`
	Tags     *[]string           `json:"tags" validate:"omitempty,dive,no_xss"`
	Metadata *models.MapMetadata `json:"metadata" validate:"omitempty"`
	Features *[]models.Feature   `json:"features" validate:"omitempty"`
}

// ElementCreateInput đầu vào thêm phần tử vào bản đồ.
// ID để trống sẽ được hệ thống cấp phát.
type ElementCreateInput struct {
	Type       string                 `json:"type" validate:"required"`
	ID         string                 `json:"id" validate:"omitempty"`
	Geometry   *models.Geometry       `json:"geometry" validate:"omitempty"`
	Properties map[string]interface{} `json:"properties" validate:"omitempty"`
}

// ElementUpdateInput đầu vào cập nhật một phần phần tử bản đồ.
// Properties được merge theo từng key, không thay thế toàn bộ.
type ElementUpdateInput struct {
	Type       string                 `json:"type" validate:"omitempty"`
	Geometry   *models.Geometry       `json:"geometry" validate:"omitempty"`
	Properties map[string]interface{} `json:"properties" validate:"omitempty"`
}
