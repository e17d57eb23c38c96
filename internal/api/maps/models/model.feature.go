// Package models - model bản đồ mặt bằng (Map, Feature) thuộc domain maps.
package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// Các loại phần tử bản đồ (element kind) trong properties.type
const (
	ElementTypeBackground = "background"
	ElementTypeSubmap     = "submap"
	ElementTypeLocal      = "local"
	ElementTypePath       = "path"
	ElementTypeAmenity    = "amenity"
)

// Các category của phần tử local trong properties.category
const (
	LocalCategoryBooth      = "booth"
	LocalCategoryStore      = "store"
	LocalCategoryRestaurant = "restaurant"
	LocalCategoryRestroom   = "restroom"
	LocalCategoryExit       = "exit"
	LocalCategoryStage      = "stage"
	LocalCategoryInfo       = "info"
	LocalCategoryOther      = "other"
)

// Geometry hình học của một phần tử bản đồ.
// Coordinates có cấu trúc thay đổi theo loại: point (number[]), line (number[][]), polygon (number[][][]).
type Geometry struct {
	Type        string      `json:"type" bson:"type"`
	Coordinates interface{} `json:"coordinates" bson:"coordinates"`
}

// FeatureProperties chứa các thuộc tính của một phần tử bản đồ.
// Các key được nhận dạng có field riêng; mọi key lạ được giữ nguyên trong Extra
// và phát lại không đổi khi marshal (không bao giờ bị drop khi ghi).
type FeatureProperties struct {
	Type      string // Loại phần tử: background|submap|local|path|amenity
	Name      string
	ParentID  string // ID của phần tử cha (submap)
	Category  string
	Color     string
	Exhibitor string
	Selected  *bool
	StoreID   string // Back-reference tới Store, chỉ có khi đã liên kết
	Extra     map[string]interface{}
}

// ToMap chuyển properties thành map phẳng: các field có giá trị + toàn bộ Extra.
func (p FeatureProperties) ToMap() map[string]interface{} {
	m := make(map[string]interface{})
	for k, v := range p.Extra {
		m[k] = v
	}
	if p.Type != "" {
		m["type"] = p.Type
	}
	if p.Name != "" {
		m["name"] = p.Name
	}
	if p.ParentID != "" {
		m["parentId"] = p.ParentID
	}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if p.Color != "" {
		m["color"] = p.Color
	}
	if p.Exhibitor != "" {
		m["exhibitor"] = p.Exhibitor
	}
	if p.Selected != nil {
		m["selected"] = *p.Selected
	}
	if p.StoreID != "" {
		m["storeId"] = p.StoreID
	}
	return m
}

// FromMap dựng properties từ map phẳng: key nhận dạng vào field riêng, còn lại vào Extra.
func FeaturePropertiesFromMap(m map[string]interface{}) FeatureProperties {
	p := FeatureProperties{}
	for k, v := range m {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				p.Type = s
				continue
			}
		case "name":
			if s, ok := v.(string); ok {
				p.Name = s
				continue
			}
		case "parentId":
			if s, ok := v.(string); ok {
				p.ParentID = s
				continue
			}
		case "category":
			if s, ok := v.(string); ok {
				p.Category = s
				continue
			}
		case "color":
			if s, ok := v.(string); ok {
				p.Color = s
				continue
			}
		case "exhibitor":
			if s, ok := v.(string); ok {
				p.Exhibitor = s
				continue
			}
		case "selected":
			if b, ok := v.(bool); ok {
				selected := b
				p.Selected = &selected
				continue
			}
		case "storeId":
			if s, ok := v.(string); ok {
				p.StoreID = s
				continue
			}
		}
		// Key không nhận dạng (hoặc sai kiểu): giữ nguyên trong Extra
		if p.Extra == nil {
			p.Extra = make(map[string]interface{})
		}
		p.Extra[k] = v
	}
	return p
}

// MarshalJSON phát properties dưới dạng map phẳng (field nhận dạng + Extra trộn chung)
func (p FeatureProperties) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// UnmarshalJSON đọc properties từ map phẳng
func (p *FeatureProperties) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FeaturePropertiesFromMap(raw)
	return nil
}

// MarshalBSON phát properties dưới dạng document phẳng khi lưu MongoDB
func (p FeatureProperties) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.M(p.ToMap()))
}

// UnmarshalBSON đọc properties từ document phẳng
func (p *FeatureProperties) UnmarshalBSON(data []byte) error {
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FeaturePropertiesFromMap(map[string]interface{}(raw))
	return nil
}

// Feature một phần tử hình học trong Map (gian hàng, lối đi, tiện ích, ...).
// Feature thuộc sở hữu hoàn toàn của Map chứa nó, không có vòng đời riêng.
type Feature struct {
	Type       string            `json:"type" bson:"type"`
	ID         string            `json:"id,omitempty" bson:"id,omitempty"`
	Geometry   *Geometry         `json:"geometry,omitempty" bson:"geometry,omitempty"`
	Properties FeatureProperties `json:"properties" bson:"properties"`
}
