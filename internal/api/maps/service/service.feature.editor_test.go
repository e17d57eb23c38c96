package mapssvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	"github.com/devwander/localiza-tech-api/internal/common"
)

func boolPtr(b bool) *bool { return &b }

func sampleFeatures() []models.Feature {
	return []models.Feature{
		{
			Type: "Feature",
			ID:   "booth-1",
			Geometry: &models.Geometry{
				Type:        "Polygon",
				Coordinates: [][][]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
			},
			Properties: models.FeatureProperties{
				Type:     models.ElementTypeLocal,
				Name:     "Booth 1",
				Category: models.LocalCategoryBooth,
				Color:    "blue",
			},
		},
		{
			Type: "Feature",
			ID:   "path-1",
			Geometry: &models.Geometry{
				Type:        "LineString",
				Coordinates: [][]float64{{0, 0}, {5, 5}},
			},
			Properties: models.FeatureProperties{
				Type: models.ElementTypePath,
				Name: "Lối đi chính",
			},
		},
		{
			Type: "Feature",
			ID:   "wc-1",
			Properties: models.FeatureProperties{
				Type:     models.ElementTypeAmenity,
				Name:     "Restroom A",
				Category: models.LocalCategoryRestroom,
			},
		},
	}
}

func TestFindFeature(t *testing.T) {
	features := sampleFeatures()

	found, err := FindFeature(features, "path-1")
	require.NoError(t, err)
	assert.Equal(t, "path-1", found.ID)
	assert.Equal(t, "Lối đi chính", found.Properties.Name)

	_, err = FindFeature(features, "missing")
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
	assert.Contains(t, err.Error(), "missing")
}

func TestFindFeatureFirstMatchWins(t *testing.T) {
	features := []models.Feature{
		{ID: "dup", Properties: models.FeatureProperties{Name: "first"}},
		{ID: "dup", Properties: models.FeatureProperties{Name: "second"}},
	}

	found, err := FindFeature(features, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", found.Properties.Name)
}

func TestInsertFeature(t *testing.T) {
	features := sampleFeatures()
	newFeature := models.Feature{ID: "booth-2", Properties: models.FeatureProperties{Name: "Booth 2"}}

	out := InsertFeature(features, newFeature)
	assert.Len(t, out, len(features)+1)
	assert.Equal(t, "booth-2", out[len(out)-1].ID)
	// Mảng đầu vào không bị thay đổi
	assert.Len(t, features, 3)
}

func TestMergeUpdateFeaturePreservesProperties(t *testing.T) {
	features := sampleFeatures()

	out, err := MergeUpdateFeature(features, "booth-1", FeaturePatch{
		Properties: map[string]interface{}{"color": "red"},
	})
	require.NoError(t, err)

	updated, err := FindFeature(out, "booth-1")
	require.NoError(t, err)
	assert.Equal(t, "red", updated.Properties.Color)
	assert.Equal(t, "Booth 1", updated.Properties.Name)
	assert.Equal(t, models.LocalCategoryBooth, updated.Properties.Category)

	// Mảng gốc giữ nguyên giá trị cũ
	original, err := FindFeature(features, "booth-1")
	require.NoError(t, err)
	assert.Equal(t, "blue", original.Properties.Color)
}

func TestMergeUpdateFeaturePreservesExtraKeys(t *testing.T) {
	features := []models.Feature{
		{
			ID: "f1",
			Properties: models.FeatureProperties{
				Name:  "Gian hàng",
				Extra: map[string]interface{}{"customTag": "vip", "rating": 4.5},
			},
		},
	}

	out, err := MergeUpdateFeature(features, "f1", FeaturePatch{
		Properties: map[string]interface{}{"color": "green"},
	})
	require.NoError(t, err)

	updated := out[0]
	assert.Equal(t, "green", updated.Properties.Color)
	assert.Equal(t, "Gian hàng", updated.Properties.Name)
	assert.Equal(t, "vip", updated.Properties.Extra["customTag"])
	assert.Equal(t, 4.5, updated.Properties.Extra["rating"])
}

func TestMergeUpdateFeatureTypeAndGeometry(t *testing.T) {
	features := sampleFeatures()
	newGeometry := &models.Geometry{Type: "Point", Coordinates: []float64{3, 4}}

	out, err := MergeUpdateFeature(features, "wc-1", FeaturePatch{
		Type:     "Feature",
		Geometry: newGeometry,
	})
	require.NoError(t, err)

	updated, err := FindFeature(out, "wc-1")
	require.NoError(t, err)
	assert.Equal(t, "Feature", updated.Type)
	assert.Equal(t, newGeometry, updated.Geometry)
	// Properties không bị đụng tới khi patch không có properties
	assert.Equal(t, "Restroom A", updated.Properties.Name)
}

func TestMergeUpdateFeatureNotFound(t *testing.T) {
	_, err := MergeUpdateFeature(sampleFeatures(), "missing", FeaturePatch{
		Properties: map[string]interface{}{"color": "red"},
	})
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
}

func TestRemoveFeature(t *testing.T) {
	features := sampleFeatures()

	out, err := RemoveFeature(features, "path-1")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	_, err = FindFeature(out, "path-1")
	assert.True(t, common.IsNotFound(err))

	_, err = RemoveFeature(features, "missing")
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
}

func TestRemoveFeatureOnlyFirstMatch(t *testing.T) {
	features := []models.Feature{
		{ID: "dup", Properties: models.FeatureProperties{Name: "first"}},
		{ID: "dup", Properties: models.FeatureProperties{Name: "second"}},
	}

	out, err := RemoveFeature(features, "dup")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "second", out[0].Properties.Name)
}

func TestSearchFeatures(t *testing.T) {
	features := sampleFeatures()

	// Query rỗng trả về toàn bộ
	assert.Len(t, SearchFeatures(features, ""), 3)

	// Không phân biệt hoa thường trên tên
	result := SearchFeatures(features, "BOOTH")
	require.Len(t, result, 1)
	assert.Equal(t, "booth-1", result[0].ID)

	// Khớp trên id
	result = SearchFeatures(features, "wc-")
	require.Len(t, result, 1)
	assert.Equal(t, "wc-1", result[0].ID)

	// Không khớp
	assert.Empty(t, SearchFeatures(features, "không tồn tại"))
}

func TestFeaturePropertiesRoundTrip(t *testing.T) {
	props := models.FeatureProperties{
		Type:      models.ElementTypeLocal,
		Name:      "Booth 9",
		Category:  models.LocalCategoryStore,
		Selected:  boolPtr(false),
		StoreID:   "abc123",
		Exhibitor: "ACME",
		Extra:     map[string]interface{}{"zone": "A"},
	}

	m := props.ToMap()
	assert.Equal(t, false, m["selected"])
	assert.Equal(t, "abc123", m["storeId"])
	assert.Equal(t, "A", m["zone"])

	back := models.FeaturePropertiesFromMap(m)
	assert.Equal(t, props.Name, back.Name)
	assert.Equal(t, props.StoreID, back.StoreID)
	require.NotNil(t, back.Selected)
	assert.False(t, *back.Selected)
	assert.Equal(t, "A", back.Extra["zone"])
}
