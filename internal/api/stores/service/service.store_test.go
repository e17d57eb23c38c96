package storessvc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/devwander/localiza-tech-api/internal/api/base/service"
	mapsmodels "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	storesdto "github.com/devwander/localiza-tech-api/internal/api/stores/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
	"github.com/devwander/localiza-tech-api/internal/common"
)

// fakeMapLinker giữ bản đồ trong bộ nhớ, thay MapService trong test luồng liên kết
type fakeMapLinker struct {
	maps          map[primitive.ObjectID]*mapsmodels.Map
	replaceCalls  int
	failReplaceOn int   // ReplaceFeatures thất bại ở lần gọi thứ N (0 = không bao giờ)
	replaceErr    error // lỗi trả về khi thất bại
	getErr        error // GetMap luôn thất bại với lỗi này khi khác nil
}

func newFakeMapLinker(mapDocs ...*mapsmodels.Map) *fakeMapLinker {
	f := &fakeMapLinker{maps: make(map[primitive.ObjectID]*mapsmodels.Map)}
	for _, mapDoc := range mapDocs {
		f.maps[mapDoc.ID] = mapDoc
	}
	return f
}

func fakeMapNotFound(mapID primitive.ObjectID) error {
	return common.NewError(common.ErrCodeDatabaseQuery,
		fmt.Sprintf("Không tìm thấy bản đồ với id %s", mapID.Hex()),
		common.StatusNotFound, nil)
}

func (f *fakeMapLinker) GetMap(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID) (mapsmodels.Map, error) {
	if f.getErr != nil {
		return mapsmodels.Map{}, f.getErr
	}
	mapDoc, ok := f.maps[mapID]
	if !ok || (!ownerID.IsZero() && mapDoc.OwnerID != ownerID) {
		return mapsmodels.Map{}, fakeMapNotFound(mapID)
	}
	return *mapDoc, nil
}

func (f *fakeMapLinker) ReplaceFeatures(ctx context.Context, mapID primitive.ObjectID, ownerID primitive.ObjectID, features []mapsmodels.Feature) (mapsmodels.Map, error) {
	f.replaceCalls++
	if f.failReplaceOn != 0 && f.replaceCalls == f.failReplaceOn {
		return mapsmodels.Map{}, f.replaceErr
	}
	mapDoc, ok := f.maps[mapID]
	if !ok || (!ownerID.IsZero() && mapDoc.OwnerID != ownerID) {
		return mapsmodels.Map{}, fakeMapNotFound(mapID)
	}
	mapDoc.Features = features
	return *mapDoc, nil
}

// feature lấy phần tử theo id từ bản đồ trong fake, lỗi test nếu không có
func (f *fakeMapLinker) feature(t *testing.T, mapID primitive.ObjectID, featureID string) mapsmodels.Feature {
	t.Helper()
	for _, feat := range f.maps[mapID].Features {
		if feat.ID == featureID {
			return feat
		}
	}
	t.Fatalf("không có phần tử %s trên bản đồ %s", featureID, mapID.Hex())
	return mapsmodels.Feature{}
}

// fakeStoreBase giữ cửa hàng trong bộ nhớ, thay BaseServiceMongo trong test.
// Method không triển khai panic qua interface nil bên trong.
type fakeStoreBase struct {
	basesvc.BaseServiceMongo[models.Store]
	stores  map[primitive.ObjectID]models.Store
	order   []primitive.ObjectID
	updates int
}

func newFakeStoreBase() *fakeStoreBase {
	return &fakeStoreBase{stores: make(map[primitive.ObjectID]models.Store)}
}

func (f *fakeStoreBase) InsertOne(ctx context.Context, data models.Store) (models.Store, error) {
	if data.ID.IsZero() {
		data.ID = primitive.NewObjectID()
	}
	f.stores[data.ID] = data
	f.order = append(f.order, data.ID)
	return data, nil
}

func (f *fakeStoreBase) FindOneById(ctx context.Context, id primitive.ObjectID) (models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return store, common.NewError(common.ErrCodeDatabaseQuery,
			fmt.Sprintf("Không tìm thấy bản ghi với id %s", id.Hex()),
			common.StatusNotFound, nil)
	}
	return store, nil
}

func (f *fakeStoreBase) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return store, common.NewError(common.ErrCodeDatabaseQuery,
			fmt.Sprintf("Không tìm thấy bản ghi với id %s", id.Hex()),
			common.StatusNotFound, nil)
	}
	if update, isUpdate := data.(*basesvc.UpdateData); isUpdate {
		if v, isString := update.Set["name"].(string); isString {
			store.Name = v
		}
		if v, isID := update.Set["mapId"].(primitive.ObjectID); isID {
			store.MapID = v
		}
		if v, isString := update.Set["featureId"].(string); isString {
			store.FeatureID = v
		}
	}
	f.stores[id] = store
	f.updates++
	return store, nil
}

func (f *fakeStoreBase) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.stores[id]; !ok {
		return common.NewError(common.ErrCodeDatabaseQuery,
			fmt.Sprintf("Không tìm thấy bản ghi với id %s", id.Hex()),
			common.StatusNotFound, nil)
	}
	delete(f.stores, id)
	return nil
}

func (f *fakeStoreBase) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Store, error) {
	out := make([]models.Store, 0, len(f.stores))
	for _, id := range f.order {
		if store, ok := f.stores[id]; ok {
			out = append(out, store)
		}
	}
	return out, nil
}

// ownedMap dựng bản đồ thuộc ownerID với các phần tử chưa liên kết
func ownedMap(ownerID primitive.ObjectID, featureIDs ...string) *mapsmodels.Map {
	features := make([]mapsmodels.Feature, 0, len(featureIDs))
	for _, id := range featureIDs {
		features = append(features, mapsmodels.Feature{
			Type: "Feature",
			ID:   id,
			Properties: mapsmodels.FeatureProperties{
				Type: mapsmodels.ElementTypeLocal,
				Name: "Gian " + id,
			},
		})
	}
	return &mapsmodels.Map{
		ID:       primitive.NewObjectID(),
		Name:     "Tầng trệt",
		OwnerID:  ownerID,
		Features: features,
	}
}

func createInput(mapID primitive.ObjectID, featureID string) *storesdto.StoreCreateInput {
	return &storesdto.StoreCreateInput{
		Name:         "Cà phê Trung Nguyên",
		Floor:        "1",
		Category:     models.StoreCategoryFood,
		OpeningHours: "08:00-22:00",
		Description:  "Quầy cà phê tầng trệt",
		MapID:        mapID.Hex(),
		FeatureID:    featureID,
		Location:     &models.StoreLocation{X: 10, Y: 20},
	}
}

func newLinkTestService(maps *fakeMapLinker) (*StoreService, *fakeStoreBase) {
	base := newFakeStoreBase()
	return &StoreService{BaseServiceMongo: base, mapService: maps}, base
}

func TestCreateStoreWithLinkWritesBothSides(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1")
	maps := newFakeMapLinker(mapDoc)
	svc, base := newLinkTestService(maps)

	created, err := svc.CreateStoreWithLink(context.Background(), owner, createInput(mapDoc.ID, "f1"))
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())

	// Phía cửa hàng trỏ tới phần tử, phía phần tử trỏ ngược lại cửa hàng
	stored := base.stores[created.ID]
	assert.Equal(t, mapDoc.ID, stored.MapID)
	assert.Equal(t, "f1", stored.FeatureID)
	assert.Equal(t, created.ID.Hex(), maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
}

func TestCreateStoreWithLinkConflictLeavesMapUntouched(t *testing.T) {
	owner := primitive.NewObjectID()
	otherStoreID := primitive.NewObjectID().Hex()
	mapDoc := ownedMap(owner, "f1")
	mapDoc.Features[0].Properties.StoreID = otherStoreID
	maps := newFakeMapLinker(mapDoc)
	svc, base := newLinkTestService(maps)

	_, err := svc.CreateStoreWithLink(context.Background(), owner, createInput(mapDoc.ID, "f1"))
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))

	// Không có cửa hàng nào được lưu, không có lần ghi nào lên bản đồ
	assert.Empty(t, base.stores)
	assert.Zero(t, maps.replaceCalls)
	assert.Equal(t, otherStoreID, maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
}

func TestCreateStoreWithLinkKeepsStoreOnLinkWriteFailure(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1")
	maps := newFakeMapLinker(mapDoc)
	maps.failReplaceOn = 1
	maps.replaceErr = errors.New("mất kết nối database")
	svc, base := newLinkTestService(maps)

	created, err := svc.CreateStoreWithLink(context.Background(), owner, createInput(mapDoc.ID, "f1"))
	require.Error(t, err)

	// Cửa hàng vẫn được giữ lại dù ghi liên kết thất bại
	require.False(t, created.ID.IsZero())
	assert.Contains(t, base.stores, created.ID)
	assert.Empty(t, maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)

	// Reconciler sửa được nửa liên kết còn thiếu
	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fixed)
	assert.Equal(t, created.ID.Hex(), maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
}

func TestUpdateStoreRelinkMovesLink(t *testing.T) {
	owner := primitive.NewObjectID()
	oldMap := ownedMap(owner, "f1")
	newMap := ownedMap(owner, "f2")
	maps := newFakeMapLinker(oldMap, newMap)
	svc, base := newLinkTestService(maps)

	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: oldMap.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	oldMap.Features[0].Properties.StoreID = store.ID.Hex()

	newMapHex := newMap.ID.Hex()
	newFeatureID := "f2"
	updated, err := svc.UpdateStore(context.Background(), store.ID, owner, &storesdto.StoreUpdateInput{
		MapID:     &newMapHex,
		FeatureID: &newFeatureID,
	})
	require.NoError(t, err)

	// Phần tử cũ được gỡ, phần tử mới được liên kết, cửa hàng trỏ tới đích mới
	assert.Empty(t, maps.feature(t, oldMap.ID, "f1").Properties.StoreID)
	assert.Equal(t, store.ID.Hex(), maps.feature(t, newMap.ID, "f2").Properties.StoreID)
	assert.Equal(t, newMap.ID, updated.MapID)
	assert.Equal(t, "f2", updated.FeatureID)
	assert.Equal(t, newMap.ID, base.stores[store.ID].MapID)
}

func TestUpdateStoreLinkFailureKeepsStoreFields(t *testing.T) {
	owner := primitive.NewObjectID()
	oldMap := ownedMap(owner, "f1")
	newMap := ownedMap(owner, "f2")
	maps := newFakeMapLinker(oldMap, newMap)
	// Lần 1 là gỡ liên kết cũ, lần 2 là ghi liên kết mới
	maps.failReplaceOn = 2
	maps.replaceErr = errors.New("mất kết nối database")
	svc, base := newLinkTestService(maps)

	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: oldMap.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	oldMap.Features[0].Properties.StoreID = store.ID.Hex()

	newMapHex := newMap.ID.Hex()
	newFeatureID := "f2"
	_, err = svc.UpdateStore(context.Background(), store.ID, owner, &storesdto.StoreUpdateInput{
		MapID:     &newMapHex,
		FeatureID: &newFeatureID,
	})
	require.Error(t, err)

	// Field của cửa hàng chưa bị ghi: không bao giờ trỏ tới phần tử chưa được liên kết
	assert.Zero(t, base.updates)
	assert.Equal(t, oldMap.ID, base.stores[store.ID].MapID)
	assert.Equal(t, "f1", base.stores[store.ID].FeatureID)
	assert.Empty(t, maps.feature(t, newMap.ID, "f2").Properties.StoreID)
}

func TestUpdateStoreConflictOnNewFeature(t *testing.T) {
	owner := primitive.NewObjectID()
	oldMap := ownedMap(owner, "f1")
	newMap := ownedMap(owner, "f2")
	newMap.Features[0].Properties.StoreID = primitive.NewObjectID().Hex()
	maps := newFakeMapLinker(oldMap, newMap)
	svc, base := newLinkTestService(maps)

	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: oldMap.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	oldMap.Features[0].Properties.StoreID = store.ID.Hex()

	newMapHex := newMap.ID.Hex()
	newFeatureID := "f2"
	_, err = svc.UpdateStore(context.Background(), store.ID, owner, &storesdto.StoreUpdateInput{
		MapID:     &newMapHex,
		FeatureID: &newFeatureID,
	})
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))
	assert.Zero(t, base.updates)
}

func TestUpdateStoreForbiddenForOtherOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1")
	maps := newFakeMapLinker(mapDoc)
	svc, base := newLinkTestService(maps)

	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: mapDoc.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)

	name := "Tên mới"
	_, err = svc.UpdateStore(context.Background(), store.ID, primitive.NewObjectID(), &storesdto.StoreUpdateInput{Name: &name})
	require.Error(t, err)

	var appErr *common.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.StatusForbidden, appErr.StatusCode)
}

func TestDeleteStoreUnlinksAndDeletes(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1")
	maps := newFakeMapLinker(mapDoc)
	svc, base := newLinkTestService(maps)

	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: mapDoc.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	mapDoc.Features[0].Properties.StoreID = store.ID.Hex()

	require.NoError(t, svc.DeleteStore(context.Background(), store.ID, owner))
	assert.NotContains(t, base.stores, store.ID)
	assert.Empty(t, maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
}

func TestDeleteStoreSurvivesMapFailures(t *testing.T) {
	owner := primitive.NewObjectID()

	// Bản đồ không còn tồn tại
	maps := newFakeMapLinker()
	svc, base := newLinkTestService(maps)
	store, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng A", MapID: primitive.NewObjectID(), FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStore(context.Background(), store.ID, owner))
	assert.NotContains(t, base.stores, store.ID)

	// Đọc bản đồ thất bại vì lỗi hạ tầng, xóa vẫn phải thành công
	maps = newFakeMapLinker()
	maps.getErr = errors.New("mất kết nối database")
	svc, base = newLinkTestService(maps)
	store, err = base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng B", MapID: primitive.NewObjectID(), FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStore(context.Background(), store.ID, owner))
	assert.NotContains(t, base.stores, store.ID)
}

func TestRepairIdempotent(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1", "f2")
	maps := newFakeMapLinker(mapDoc)
	svc, base := newLinkTestService(maps)

	s1, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng 1", MapID: mapDoc.ID, FeatureID: "f1", OwnerID: owner,
	})
	require.NoError(t, err)
	s2, err := base.InsertOne(context.Background(), models.Store{
		Name: "Cửa hàng 2", MapID: mapDoc.ID, FeatureID: "f2", OwnerID: owner,
	})
	require.NoError(t, err)

	report, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Fixed)
	assert.Equal(t, s1.ID.Hex(), maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
	assert.Equal(t, s2.ID.Hex(), maps.feature(t, mapDoc.ID, "f2").Properties.StoreID)

	// Lượt hai không còn gì để sửa
	report, err = svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Fixed)
	assert.Equal(t, 2, report.Skipped)
}

func TestStoreListFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	mapID := primitive.NewObjectID()

	// Không tiêu chí nào chỉ lọc theo chủ sở hữu
	assert.Equal(t, bson.M{"ownerId": owner}, storeListFilter(owner, StoreListFilter{}))

	filter := storeListFilter(owner, StoreListFilter{
		Category: models.StoreCategoryFood,
		MapID:    mapID,
		Query:    "cà phê",
	})
	assert.Equal(t, models.StoreCategoryFood, filter["category"])
	assert.Equal(t, mapID, filter["mapId"])

	// Chuỗi tìm kiếm khớp trên tên hoặc mô tả, không phân biệt hoa thường
	pattern := bson.M{"$regex": "cà phê", "$options": "i"}
	assert.Equal(t, []bson.M{{"name": pattern}, {"description": pattern}}, filter["$or"])

	// Ký tự đặc biệt của regex bị escape, không được hiểu là pattern
	escaped := storeListFilter(owner, StoreListFilter{Query: "a.b*"})
	or := escaped["$or"].([]bson.M)
	assert.Equal(t, `a\.b\*`, or[0]["name"].(bson.M)["$regex"])
}

func TestLinkLifecycle(t *testing.T) {
	owner := primitive.NewObjectID()
	mapDoc := ownedMap(owner, "f1")
	maps := newFakeMapLinker(mapDoc)
	svc, _ := newLinkTestService(maps)
	ctx := context.Background()

	// Tạo cửa hàng thứ nhất, đối soát sạch
	first, err := svc.CreateStoreWithLink(ctx, owner, createInput(mapDoc.ID, "f1"))
	require.NoError(t, err)
	report, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OK)
	assert.Zero(t, report.MissingLink)
	assert.Zero(t, report.Errors)

	// Phần tử đã có chủ, cửa hàng thứ hai bị từ chối
	_, err = svc.CreateStoreWithLink(ctx, owner, createInput(mapDoc.ID, "f1"))
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))

	// Xóa cửa hàng thứ nhất giải phóng phần tử, tạo lại thành công
	require.NoError(t, svc.DeleteStore(ctx, first.ID, owner))
	assert.Empty(t, maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)

	second, err := svc.CreateStoreWithLink(ctx, owner, createInput(mapDoc.ID, "f1"))
	require.NoError(t, err)
	assert.Equal(t, second.ID.Hex(), maps.feature(t, mapDoc.ID, "f1").Properties.StoreID)
}
