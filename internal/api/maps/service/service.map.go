package mapssvc

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/devwander/localiza-tech-api/internal/api/base/service"
	mapsdto "github.com/devwander/localiza-tech-api/internal/api/maps/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/global"
	"github.com/devwander/localiza-tech-api/internal/logger"

	basemodels "github.com/devwander/localiza-tech-api/internal/api/base/models"
)

// MapService là cấu trúc chứa các phương thức liên quan đến bản đồ
type MapService struct {
	*basesvc.BaseServiceMongoImpl[models.Map]
}

// NewMapService tạo mới MapService
func NewMapService() (*MapService, error) {
	mapCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Maps)
	if !exist {
		return nil, fmt.Errorf("failed to get maps collection: %v", common.ErrNotFound)
	}

	return &MapService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Map](mapCollection),
	}, nil
}

// mapNotFoundError lỗi không tìm thấy bản đồ, kèm id trong thông báo.
// Bản đồ không thuộc sở hữu cũng trả lỗi này, không để lộ sự tồn tại.
func mapNotFoundError(mapID primitive.ObjectID) error {
	return common.NewError(common.ErrCodeDatabaseQuery,
		fmt.Sprintf("Không tìm thấy bản đồ với id %s", mapID.Hex()),
		common.StatusNotFound, nil)
}

// GetMap tải bản đồ theo id. ownerID khác zero thì lọc theo chủ sở hữu,
// zero thì đọc không lọc (endpoint công khai, reconciler).
func (s *MapService) GetMap(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID) (models.Map, error) {
	filter := bson.M{"_id": mapID}
	if !ownerID.IsZero() {
		filter["ownerId"] = ownerID
	}

	mapDoc, err := s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return mapDoc, mapNotFoundError(mapID)
		}
		return mapDoc, err
	}
	return mapDoc, nil
}

// ReplaceFeatures ghi lại toàn bộ mảng features của bản đồ.
// ownerID khác zero thì filter theo chủ sở hữu, ghi thất bại (NotFound)
// nếu document không còn khớp filter.
func (s *MapService) ReplaceFeatures(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, features []models.Feature) (models.Map, error) {
	filter := bson.M{"_id": mapID}
	if !ownerID.IsZero() {
		filter["ownerId"] = ownerID
	}
	if features == nil {
		features = []models.Feature{}
	}

	updated, err := s.BaseServiceMongoImpl.UpdateOne(ctx, filter, &basesvc.UpdateData{
		Set: map[string]interface{}{"features": features},
	}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return updated, mapNotFoundError(mapID)
		}
		return updated, err
	}
	return updated, nil
}

// CreateMap tạo bản đồ mới cho người dùng ownerID
func (s *MapService) CreateMap(ctx context.Context, ownerID primitive.ObjectID, input *mapsdto.MapCreateInput) (models.Map, error) {
	newMap := models.Map{
		Name:     input.Name,
		Type:     input.Type,
		Tags:     input.Tags,
		Metadata: input.Metadata,
		Features: input.Features,
		OwnerID:  ownerID,
	}
	if newMap.Features == nil {
		newMap.Features = []models.Feature{}
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, newMap)
	if err != nil {
		return created, err
	}

	logger.WithModule("maps").WithField("map_id", created.ID.Hex()).Info("CreateMap: Tạo bản đồ thành công")
	return created, nil
}

// UpdateMap cập nhật thông tin bản đồ, chỉ các field client gửi lên.
// Features chỉ bị thay khi được gửi kèm.
func (s *MapService) UpdateMap(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, input *mapsdto.MapUpdateInput) (models.Map, error) {
	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	if input.Name != nil {
		updateData.Set["name"] = *input.Name
	}
	if input.Type != nil {
		updateData.Set["type"] = *input.Type
	}
	if input.Tags != nil {
		updateData.Set["tags"] = *input.Tags
	}
	if input.Metadata != nil {
		updateData.Set["metadata"] = input.Metadata
	}
	if input.Features != nil {
		updateData.Set["features"] = *input.Features
	}

	updated, err := s.BaseServiceMongoImpl.UpdateOne(ctx, bson.M{"_id": mapID, "ownerId": ownerID}, updateData, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return updated, mapNotFoundError(mapID)
		}
		return updated, err
	}
	return updated, nil
}

// DeleteMap xóa bản đồ của người dùng ownerID
func (s *MapService) DeleteMap(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID) error {
	err := s.BaseServiceMongoImpl.DeleteOne(ctx, bson.M{"_id": mapID, "ownerId": ownerID})
	if err != nil {
		if common.IsNotFound(err) {
			return mapNotFoundError(mapID)
		}
		return err
	}

	logger.WithModule("maps").WithField("map_id", mapID.Hex()).Info("DeleteMap: Xóa bản đồ thành công")
	return nil
}

// Thứ tự sắp xếp danh sách bản đồ
const (
	MapOrderAlphabetical = "alphabetical"
	MapOrderMostRecent   = "most_recent"
	MapOrderOldest       = "oldest"
)

// mapListSort chuyển tham số order thành sort của MongoDB.
// Giá trị không nhận dạng được rơi về alphabetical.
func mapListSort(order string) bson.D {
	switch order {
	case MapOrderMostRecent:
		return bson.D{{Key: "createdAt", Value: -1}}
	case MapOrderOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	default:
		return bson.D{{Key: "name", Value: 1}}
	}
}

// FindAllForOwner liệt kê bản đồ của người dùng có phân trang,
// lọc tùy chọn theo tên (regex không phân biệt hoa thường) và sắp xếp theo order
func (s *MapService) FindAllForOwner(ctx context.Context, ownerID primitive.ObjectID, name string, order string, page, limit int64) (*basemodels.PaginateResult[models.Map], error) {
	filter := bson.M{"ownerId": ownerID}
	if name != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(name), "$options": "i"}
	}
	return s.BaseServiceMongoImpl.FindWithPagination(ctx, filter, page, limit, options.Find().SetSort(mapListSort(order)))
}

// tagStrings lọc giá trị distinct của MongoDB về danh sách chuỗi đã sắp xếp,
// bỏ qua giá trị rỗng hoặc không phải chuỗi
func tagStrings(values []interface{}) []string {
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag, ok := v.(string); ok && tag != "" {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// FindAllTags liệt kê tất cả tag xuất hiện trên các bản đồ của người dùng
func (s *MapService) FindAllTags(ctx context.Context, ownerID primitive.ObjectID) ([]string, error) {
	values, err := s.BaseServiceMongoImpl.Distinct(ctx, "tags", bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	return tagStrings(values), nil
}

// AddElement thêm phần tử vào bản đồ.
// ID để trống sẽ được cấp phát tự động, ID trùng với phần tử hiện có bị từ chối.
func (s *MapService) AddElement(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, input *mapsdto.ElementCreateInput) (*models.Feature, error) {
	mapDoc, err := s.GetMap(ctx, mapID, ownerID)
	if err != nil {
		return nil, err
	}

	featureID := input.ID
	if featureID == "" {
		featureID = uuid.NewString()
	} else if _, err := FindFeature(mapDoc.Features, featureID); err == nil {
		return nil, common.NewError(common.ErrCodeBusinessState,
			fmt.Sprintf("Phần tử với id %s đã tồn tại trong bản đồ", featureID),
			common.StatusConflict, nil)
	}

	feature := models.Feature{
		Type:       input.Type,
		ID:         featureID,
		Geometry:   input.Geometry,
		Properties: models.FeaturePropertiesFromMap(input.Properties),
	}

	features := InsertFeature(mapDoc.Features, feature)
	if _, err := s.ReplaceFeatures(ctx, mapID, ownerID, features); err != nil {
		return nil, err
	}

	logger.WithModule("maps").WithFields(map[string]interface{}{
		"map_id":     mapID.Hex(),
		"feature_id": featureID,
	}).Info("AddElement: Thêm phần tử thành công")
	return &feature, nil
}

// UpdateElement cập nhật một phần phần tử của bản đồ (merge theo từng key của properties)
func (s *MapService) UpdateElement(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, featureID string, input *mapsdto.ElementUpdateInput) (*models.Feature, error) {
	mapDoc, err := s.GetMap(ctx, mapID, ownerID)
	if err != nil {
		return nil, err
	}

	features, err := MergeUpdateFeature(mapDoc.Features, featureID, FeaturePatch{
		Type:       input.Type,
		Geometry:   input.Geometry,
		Properties: input.Properties,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ReplaceFeatures(ctx, mapID, ownerID, features); err != nil {
		return nil, err
	}

	updated, err := FindFeature(features, featureID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveElement loại bỏ phần tử khỏi bản đồ
func (s *MapService) RemoveElement(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, featureID string) error {
	mapDoc, err := s.GetMap(ctx, mapID, ownerID)
	if err != nil {
		return err
	}

	features, err := RemoveFeature(mapDoc.Features, featureID)
	if err != nil {
		return err
	}

	if _, err := s.ReplaceFeatures(ctx, mapID, ownerID, features); err != nil {
		return err
	}

	logger.WithModule("maps").WithFields(map[string]interface{}{
		"map_id":     mapID.Hex(),
		"feature_id": featureID,
	}).Info("RemoveElement: Loại bỏ phần tử thành công")
	return nil
}

// SearchElements tìm phần tử trong bản đồ theo chuỗi con trên tên hoặc id
func (s *MapService) SearchElements(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, query string) ([]models.Feature, error) {
	mapDoc, err := s.GetMap(ctx, mapID, ownerID)
	if err != nil {
		return nil, err
	}
	return SearchFeatures(mapDoc.Features, query), nil
}
