// Package storessvc - service cửa hàng (Store): vòng đời cửa hàng và liên kết
// hai chiều Store ↔ Feature. Đây là nơi duy nhất được phép đặt hoặc xóa
// properties.storeId trên phần tử bản đồ.
package storessvc

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "github.com/devwander/localiza-tech-api/internal/api/base/models"
	basesvc "github.com/devwander/localiza-tech-api/internal/api/base/service"
	mapsmodels "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	mapssvc "github.com/devwander/localiza-tech-api/internal/api/maps/service"
	storesdto "github.com/devwander/localiza-tech-api/internal/api/stores/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/global"
	"github.com/devwander/localiza-tech-api/internal/logger"
)

// mapLinker là phần của MapService mà luồng liên kết cần đến:
// đọc bản đồ và ghi lại mảng features. Tách interface để test luồng
// liên kết và reconciler với bản đồ trong bộ nhớ.
type mapLinker interface {
	GetMap(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID) (mapsmodels.Map, error)
	ReplaceFeatures(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, features []mapsmodels.Feature) (mapsmodels.Map, error)
}

// StoreService là cấu trúc chứa các phương thức liên quan đến cửa hàng
type StoreService struct {
	basesvc.BaseServiceMongo[models.Store]
	mapService mapLinker
}

// NewStoreService tạo mới StoreService
func NewStoreService() (*StoreService, error) {
	storeCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Stores)
	if !exist {
		return nil, fmt.Errorf("failed to get stores collection: %v", common.ErrNotFound)
	}

	mapService, err := mapssvc.NewMapService()
	if err != nil {
		return nil, fmt.Errorf("failed to create map service: %v", err)
	}

	return &StoreService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[models.Store](storeCollection),
		mapService:       mapService,
	}, nil
}

// storeNotFoundError lỗi không tìm thấy cửa hàng, kèm id trong thông báo
func storeNotFoundError(storeID primitive.ObjectID) error {
	return common.NewError(common.ErrCodeDatabaseQuery,
		fmt.Sprintf("Không tìm thấy cửa hàng với id %s", storeID.Hex()),
		common.StatusNotFound, nil)
}

// featureLinkedError lỗi phần tử đã được liên kết với cửa hàng khác
func featureLinkedError(featureID, linkedStoreID string) error {
	return common.NewError(common.ErrCodeBusinessLink,
		fmt.Sprintf("Phần tử %s đã được liên kết với cửa hàng %s", featureID, linkedStoreID),
		common.StatusConflict, nil)
}

// GetStore tải cửa hàng theo id, không lọc theo chủ sở hữu
func (s *StoreService) GetStore(ctx context.Context, storeID primitive.ObjectID) (models.Store, error) {
	store, err := s.BaseServiceMongo.FindOneById(ctx, storeID)
	if err != nil {
		if common.IsNotFound(err) {
			return store, storeNotFoundError(storeID)
		}
		return store, err
	}
	return store, nil
}

// getStoreOwned tải cửa hàng theo id và kiểm tra chủ sở hữu.
// Cửa hàng tồn tại nhưng không thuộc ownerID trả về Forbidden (khác với bản đồ,
// tra cứu cửa hàng theo id không bị lọc sở hữu khi đọc).
func (s *StoreService) getStoreOwned(ctx context.Context, storeID primitive.ObjectID, ownerID primitive.ObjectID) (models.Store, error) {
	store, err := s.GetStore(ctx, storeID)
	if err != nil {
		return store, err
	}
	if store.OwnerID != ownerID {
		return store, common.NewError(common.ErrCodeAuthOwnership,
			fmt.Sprintf("Không có quyền thao tác trên cửa hàng %s", storeID.Hex()),
			common.StatusForbidden, nil)
	}
	return store, nil
}

// CreateStoreWithLink tạo cửa hàng mới và thiết lập liên kết hai chiều với phần tử bản đồ.
// Thứ tự: tải bản đồ (lọc sở hữu) → tìm phần tử → từ chối nếu đã liên kết →
// lưu cửa hàng → ghi storeId vào phần tử. Ghi phần tử thất bại sau khi cửa hàng
// đã lưu thì cửa hàng vẫn được giữ lại (không rollback), reconciler sẽ sửa sau.
func (s *StoreService) CreateStoreWithLink(ctx context.Context, ownerID primitive.ObjectID, input *storesdto.StoreCreateInput) (models.Store, error) {
	var created models.Store

	mapID, err := primitive.ObjectIDFromHex(input.MapID)
	if err != nil {
		return created, common.NewError(common.ErrCodeValidationFormat, "ID bản đồ không hợp lệ", common.StatusBadRequest, err)
	}

	mapDoc, err := s.mapService.GetMap(ctx, mapID, ownerID)
	if err != nil {
		return created, err
	}

	feature, err := mapssvc.FindFeature(mapDoc.Features, input.FeatureID)
	if err != nil {
		return created, err
	}
	if feature.Properties.StoreID != "" {
		return created, featureLinkedError(input.FeatureID, feature.Properties.StoreID)
	}

	created, err = s.BaseServiceMongo.InsertOne(ctx, models.Store{
		Name:         input.Name,
		Floor:        input.Floor,
		Category:     input.Category,
		OpeningHours: input.OpeningHours,
		Logo:         input.Logo,
		Description:  input.Description,
		MapID:        mapID,
		FeatureID:    input.FeatureID,
		Location:     input.Location,
		Phone:        input.Phone,
		Email:        input.Email,
		Website:      input.Website,
		OwnerID:      ownerID,
	})
	if err != nil {
		return created, err
	}

	features, err := mapssvc.MergeUpdateFeature(mapDoc.Features, input.FeatureID, mapssvc.FeaturePatch{
		Properties: map[string]interface{}{"storeId": created.ID.Hex()},
	})
	if err == nil {
		_, err = s.mapService.ReplaceFeatures(ctx, mapID, ownerID, features)
	}
	if err != nil {
		// Cửa hàng đã lưu nhưng chưa liên kết, trạng thái hợp lệ tạm thời
		logger.WithModule("stores").WithFields(map[string]interface{}{
			"store_id":   created.ID.Hex(),
			"map_id":     mapID.Hex(),
			"feature_id": input.FeatureID,
			"error":      err.Error(),
		}).Warn("CreateStoreWithLink: Cửa hàng đã lưu nhưng ghi liên kết vào bản đồ thất bại")
		return created, common.NewError(common.ErrCodeBusinessLink,
			fmt.Sprintf("Đã tạo cửa hàng %s nhưng chưa ghi được liên kết vào bản đồ %s", created.ID.Hex(), mapID.Hex()),
			common.StatusInternalServerError, err)
	}

	logger.WithModule("stores").WithFields(map[string]interface{}{
		"store_id":   created.ID.Hex(),
		"map_id":     mapID.Hex(),
		"feature_id": input.FeatureID,
	}).Info("CreateStoreWithLink: Tạo cửa hàng và liên kết thành công")
	return created, nil
}

// UpdateStore cập nhật cửa hàng. MapID/FeatureID thay đổi kích hoạt luồng relink:
// gỡ liên kết cũ → kiểm tra đích mới → liên kết mới → lưu field của cửa hàng
// sau cùng. Cập nhật thường (không đổi liên kết) bỏ qua toàn bộ thao tác bản đồ.
func (s *StoreService) UpdateStore(ctx context.Context, storeID primitive.ObjectID, ownerID primitive.ObjectID, input *storesdto.StoreUpdateInput) (models.Store, error) {
	store, err := s.getStoreOwned(ctx, storeID, ownerID)
	if err != nil {
		return store, err
	}

	newMapID := store.MapID
	if input.MapID != nil {
		newMapID, err = primitive.ObjectIDFromHex(*input.MapID)
		if err != nil {
			return store, common.NewError(common.ErrCodeValidationFormat, "ID bản đồ không hợp lệ", common.StatusBadRequest, err)
		}
	}
	newFeatureID := store.FeatureID
	if input.FeatureID != nil {
		newFeatureID = *input.FeatureID
	}

	relink := newMapID != store.MapID || newFeatureID != store.FeatureID
	if relink {
		// Gỡ trước khi liên kết mới: không bao giờ có hai cửa hàng cùng giữ
		// một phần tử trong lúc chuyển, đổi lại có khoảng ngắn cửa hàng
		// không liên kết với gì (reconciler khôi phục được từ mapId/featureId mới)
		if err := s.unlinkFeature(ctx, &store, ownerID); err != nil {
			return store, err
		}

		newMap, err := s.mapService.GetMap(ctx, newMapID, ownerID)
		if err != nil {
			return store, err
		}
		newFeature, err := mapssvc.FindFeature(newMap.Features, newFeatureID)
		if err != nil {
			return store, err
		}
		if newFeature.Properties.StoreID != "" && newFeature.Properties.StoreID != store.ID.Hex() {
			return store, featureLinkedError(newFeatureID, newFeature.Properties.StoreID)
		}

		features, err := mapssvc.MergeUpdateFeature(newMap.Features, newFeatureID, mapssvc.FeaturePatch{
			Properties: map[string]interface{}{"storeId": store.ID.Hex()},
		})
		if err != nil {
			return store, err
		}
		if _, err := s.mapService.ReplaceFeatures(ctx, newMapID, ownerID, features); err != nil {
			return store, err
		}
	}

	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	if input.Name != nil {
		updateData.Set["name"] = *input.Name
	}
	if input.Floor != nil {
		updateData.Set["floor"] = *input.Floor
	}
	if input.Category != nil {
		updateData.Set["category"] = *input.Category
	}
	if input.OpeningHours != nil {
		updateData.Set["openingHours"] = *input.OpeningHours
	}
	if input.Logo != nil {
		updateData.Set["logo"] = *input.Logo
	}
	if input.Description != nil {
		updateData.Set["description"] = *input.Description
	}
	if input.Location != nil {
		updateData.Set["location"] = input.Location
	}
	if input.Phone != nil {
		updateData.Set["phone"] = *input.Phone
	}
	if input.Email != nil {
		updateData.Set["email"] = *input.Email
	}
	if input.Website != nil {
		updateData.Set["website"] = *input.Website
	}
	if relink {
		updateData.Set["mapId"] = newMapID
		updateData.Set["featureId"] = newFeatureID
	}

	updated, err := s.BaseServiceMongo.UpdateById(ctx, store.ID, updateData)
	if err != nil {
		return updated, err
	}

	if relink {
		logger.WithModule("stores").WithFields(map[string]interface{}{
			"store_id":       store.ID.Hex(),
			"new_map_id":     newMapID.Hex(),
			"new_feature_id": newFeatureID,
		}).Info("UpdateStore: Chuyển liên kết cửa hàng thành công")
	}
	return updated, nil
}

// DeleteStore xóa cửa hàng. Gỡ liên kết trên bản đồ theo kiểu best-effort:
// bản đồ không truy cập được thì ghi log và bỏ qua, cửa hàng vẫn bị xóa
// (liên kết treo sẽ do reconciler xử lý).
func (s *StoreService) DeleteStore(ctx context.Context, storeID primitive.ObjectID, ownerID primitive.ObjectID) error {
	store, err := s.getStoreOwned(ctx, storeID, ownerID)
	if err != nil {
		return err
	}

	if err := s.unlinkFeature(ctx, &store, ownerID); err != nil {
		logger.WithModule("stores").WithFields(map[string]interface{}{
			"store_id": store.ID.Hex(),
			"map_id":   store.MapID.Hex(),
			"error":    err.Error(),
		}).Warn("DeleteStore: Gỡ liên kết thất bại, vẫn tiếp tục xóa cửa hàng")
	}

	if err := s.BaseServiceMongo.DeleteById(ctx, store.ID); err != nil {
		return err
	}

	logger.WithModule("stores").WithField("store_id", store.ID.Hex()).Info("DeleteStore: Xóa cửa hàng thành công")
	return nil
}

// unlinkFeature xóa properties.storeId trên phần tử đang liên kết với cửa hàng.
// Chỉ xóa khi storeId trên phần tử đúng bằng id của cửa hàng này (không ghi đè
// liên kết đã được gán lại cho cửa hàng khác). Bản đồ không tồn tại được bỏ qua.
func (s *StoreService) unlinkFeature(ctx context.Context, store *models.Store, ownerID primitive.ObjectID) error {
	mapDoc, err := s.mapService.GetMap(ctx, store.MapID, ownerID)
	if err != nil {
		if common.IsNotFound(err) {
			logger.WithModule("stores").WithFields(map[string]interface{}{
				"store_id": store.ID.Hex(),
				"map_id":   store.MapID.Hex(),
			}).Warn("unlinkFeature: Bản đồ không tồn tại, bỏ qua bước gỡ liên kết")
			return nil
		}
		return err
	}

	feature, err := mapssvc.FindFeature(mapDoc.Features, store.FeatureID)
	if err != nil {
		// Phần tử không còn trên bản đồ, không có gì để gỡ
		return nil
	}
	if feature.Properties.StoreID != store.ID.Hex() {
		return nil
	}

	features, err := mapssvc.MergeUpdateFeature(mapDoc.Features, store.FeatureID, mapssvc.FeaturePatch{
		Properties: map[string]interface{}{"storeId": ""},
	})
	if err != nil {
		return nil
	}

	if _, err := s.mapService.ReplaceFeatures(ctx, mapDoc.ID, ownerID, features); err != nil {
		if common.IsNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

// FindByMapID liệt kê cửa hàng theo bản đồ, không lọc chủ sở hữu (phục vụ hiển thị công khai)
func (s *StoreService) FindByMapID(ctx context.Context, mapID primitive.ObjectID) ([]models.Store, error) {
	return s.BaseServiceMongo.Find(ctx, bson.M{"mapId": mapID}, nil)
}

// StoreListFilter các tiêu chí lọc danh sách cửa hàng
type StoreListFilter struct {
	Category string             // Lọc đúng bằng category
	Query    string             // Chuỗi con trên tên hoặc mô tả, không phân biệt hoa thường
	MapID    primitive.ObjectID // Lọc theo bản đồ, zero là bỏ qua
}

// storeListFilter dựng filter MongoDB từ các tiêu chí lọc
func storeListFilter(ownerID primitive.ObjectID, criteria StoreListFilter) bson.M {
	filter := bson.M{"ownerId": ownerID}
	if criteria.Category != "" {
		filter["category"] = criteria.Category
	}
	if !criteria.MapID.IsZero() {
		filter["mapId"] = criteria.MapID
	}
	if criteria.Query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(criteria.Query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
		}
	}
	return filter
}

// FindAllForOwner liệt kê cửa hàng của người dùng có phân trang,
// lọc tùy chọn theo category, chuỗi tìm kiếm (tên/mô tả) và bản đồ
func (s *StoreService) FindAllForOwner(ctx context.Context, ownerID primitive.ObjectID, criteria StoreListFilter, page, limit int64) (*basemodels.PaginateResult[models.Store], error) {
	return s.BaseServiceMongo.FindWithPagination(ctx, storeListFilter(ownerID, criteria), page, limit, nil)
}
