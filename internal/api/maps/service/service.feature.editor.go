// Package mapssvc - service bản đồ (Map) và các thao tác trên phần tử bản đồ.
package mapssvc

import (
	"fmt"
	"strings"

	models "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	"github.com/devwander/localiza-tech-api/internal/common"
)

// FeaturePatch mô tả thay đổi một phần trên một Feature.
// Field rỗng/nil nghĩa là không thay đổi; Properties được merge theo từng key,
// không bao giờ thay thế toàn bộ.
type FeaturePatch struct {
	Type       string                 `json:"type,omitempty"`
	Geometry   *models.Geometry       `json:"geometry,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// featureNotFoundError lỗi không tìm thấy phần tử, kèm id trong thông báo
func featureNotFoundError(featureID string) error {
	return common.NewError(common.ErrCodeDatabaseQuery,
		fmt.Sprintf("Không tìm thấy phần tử bản đồ với id %s", featureID),
		common.StatusNotFound, nil)
}

// FindFeature tìm phần tử theo id trong mảng features, quét tuyến tính,
// trả về phần tử khớp đầu tiên nếu có trùng id
func FindFeature(features []models.Feature, featureID string) (*models.Feature, error) {
	for i := range features {
		if features[i].ID == featureID {
			found := features[i]
			return &found, nil
		}
	}
	return nil, featureNotFoundError(featureID)
}

// InsertFeature thêm phần tử vào cuối mảng features.
// Không kiểm tra trùng id, trách nhiệm thuộc về phía gọi.
func InsertFeature(features []models.Feature, feature models.Feature) []models.Feature {
	out := make([]models.Feature, 0, len(features)+1)
	out = append(out, features...)
	out = append(out, feature)
	return out
}

// MergeUpdateFeature cập nhật một phần phần tử theo id: type/geometry chỉ bị
// thay khi patch có giá trị, properties được merge theo từng key (key không có
// trong patch được giữ nguyên). Không thay đổi mảng đầu vào.
func MergeUpdateFeature(features []models.Feature, featureID string, patch FeaturePatch) ([]models.Feature, error) {
	out := make([]models.Feature, len(features))
	copy(out, features)

	for i := range out {
		if out[i].ID != featureID {
			continue
		}
		if patch.Type != "" {
			out[i].Type = patch.Type
		}
		if patch.Geometry != nil {
			out[i].Geometry = patch.Geometry
		}
		if len(patch.Properties) > 0 {
			merged := out[i].Properties.ToMap()
			for k, v := range patch.Properties {
				merged[k] = v
			}
			out[i].Properties = models.FeaturePropertiesFromMap(merged)
		}
		return out, nil
	}
	return nil, featureNotFoundError(featureID)
}

// RemoveFeature loại bỏ phần tử khớp đầu tiên theo id.
// Lỗi NotFound nếu không có phần tử nào bị loại.
func RemoveFeature(features []models.Feature, featureID string) ([]models.Feature, error) {
	out := make([]models.Feature, 0, len(features))
	removed := false
	for i := range features {
		if !removed && features[i].ID == featureID {
			removed = true
			continue
		}
		out = append(out, features[i])
	}
	if !removed {
		return nil, featureNotFoundError(featureID)
	}
	return out, nil
}

// SearchFeatures tìm phần tử theo chuỗi con (không phân biệt hoa thường)
// trên properties.name hoặc id. Query rỗng trả về toàn bộ mảng.
func SearchFeatures(features []models.Feature, query string) []models.Feature {
	if query == "" {
		return features
	}
	q := strings.ToLower(query)
	out := make([]models.Feature, 0)
	for i := range features {
		if strings.Contains(strings.ToLower(features[i].Properties.Name), q) ||
			strings.Contains(strings.ToLower(features[i].ID), q) {
			out = append(out, features[i])
		}
	}
	return out
}
