package storessvc

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mapsmodels "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	mapssvc "github.com/devwander/localiza-tech-api/internal/api/maps/service"
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/logger"
)

// Trạng thái của một cửa hàng trong báo cáo đối soát liên kết
const (
	ReconcileStatusOK          = "ok"
	ReconcileStatusMissingLink = "missing_link"
	ReconcileStatusFixed       = "fixed"
	ReconcileStatusSkipped     = "skipped"
	ReconcileStatusError       = "error"
)

// Lý do lỗi khi không phân giải được tham chiếu của cửa hàng
const (
	ReconcileReasonMapNotFound     = "map_not_found"
	ReconcileReasonFeatureNotFound = "feature_not_found"
	ReconcileReasonWriteFailed     = "write_failed"
)

// ReconcileEntry trạng thái liên kết của một cửa hàng
type ReconcileEntry struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	MapID     string `json:"mapId"`
	FeatureID string `json:"featureId"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// ReconcileReport báo cáo đối soát: danh sách trạng thái theo từng cửa hàng
// kèm số liệu tổng hợp
type ReconcileReport struct {
	Total       int              `json:"total"`
	OK          int              `json:"ok"`
	MissingLink int              `json:"missingLink"`
	Fixed       int              `json:"fixed"`
	Skipped     int              `json:"skipped"`
	Errors      int              `json:"errors"`
	Entries     []ReconcileEntry `json:"entries"`
	CheckedAt   int64            `json:"checkedAt"`
}

// classifyStoreLink phân loại trạng thái liên kết của một cửa hàng so với
// bản đồ đã tải (nil nghĩa là bản đồ không tồn tại). Thuần túy, không ghi.
func classifyStoreLink(store *models.Store, mapDoc *mapsmodels.Map) (status string, reason string) {
	if mapDoc == nil {
		return ReconcileStatusError, ReconcileReasonMapNotFound
	}
	feature, err := mapssvc.FindFeature(mapDoc.Features, store.FeatureID)
	if err != nil {
		return ReconcileStatusError, ReconcileReasonFeatureNotFound
	}
	if feature.Properties.StoreID == store.ID.Hex() {
		return ReconcileStatusOK, ""
	}
	return ReconcileStatusMissingLink, ""
}

// loadMapCached tải bản đồ không lọc sở hữu, cache theo id trong một lượt đối soát.
// Trả về nil khi bản đồ không tồn tại.
func (s *StoreService) loadMapCached(ctx context.Context, cache map[string]*mapsmodels.Map, mapID primitive.ObjectID) (*mapsmodels.Map, error) {
	key := mapID.Hex()
	if mapDoc, hit := cache[key]; hit {
		return mapDoc, nil
	}

	mapDoc, err := s.mapService.GetMap(ctx, mapID, primitive.NilObjectID)
	if err != nil {
		if common.IsNotFound(err) {
			cache[key] = nil
			return nil, nil
		}
		return nil, err
	}
	cache[key] = &mapDoc
	return cache[key], nil
}

// Audit quét toàn bộ cửa hàng và đối chiếu liên kết hai chiều với bản đồ.
// Chỉ đọc, không ghi gì. Không lọc theo chủ sở hữu (quét toàn hệ thống).
func (s *StoreService) Audit(ctx context.Context) (*ReconcileReport, error) {
	stores, err := s.BaseServiceMongo.Find(ctx, bson.M{}, nil)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		Entries:   make([]ReconcileEntry, 0, len(stores)),
		CheckedAt: time.Now().UnixMilli(),
	}
	mapCache := make(map[string]*mapsmodels.Map)

	for i := range stores {
		store := &stores[i]
		mapDoc, err := s.loadMapCached(ctx, mapCache, store.MapID)
		if err != nil {
			return nil, err
		}

		status, reason := classifyStoreLink(store, mapDoc)
		report.addEntry(store, status, reason)
	}

	logger.WithModule("stores").WithFields(map[string]interface{}{
		"total":        report.Total,
		"ok":           report.OK,
		"missing_link": report.MissingLink,
		"errors":       report.Errors,
	}).Info("Audit: Hoàn tất đối soát liên kết cửa hàng")
	return report, nil
}

// Repair quét như Audit và ghi lại properties.storeId cho các cửa hàng
// mất liên kết mà bản đồ và phần tử vẫn phân giải được. Cửa hàng đã đúng
// ghi nhận skipped, tham chiếu không phân giải được ghi nhận error và giữ
// nguyên. Chạy lại lần hai cho skipped với mọi thứ lần đầu đã sửa (idempotent).
// Không lọc theo chủ sở hữu: dữ liệu cũ có thể tồn tại trước khi có sở hữu.
func (s *StoreService) Repair(ctx context.Context) (*ReconcileReport, error) {
	stores, err := s.BaseServiceMongo.Find(ctx, bson.M{}, nil)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		Entries:   make([]ReconcileEntry, 0, len(stores)),
		CheckedAt: time.Now().UnixMilli(),
	}
	mapCache := make(map[string]*mapsmodels.Map)

	for i := range stores {
		store := &stores[i]
		mapDoc, err := s.loadMapCached(ctx, mapCache, store.MapID)
		if err != nil {
			return nil, err
		}

		status, reason := classifyStoreLink(store, mapDoc)
		switch status {
		case ReconcileStatusOK:
			report.addEntry(store, ReconcileStatusSkipped, "")

		case ReconcileStatusMissingLink:
			features, mergeErr := mapssvc.MergeUpdateFeature(mapDoc.Features, store.FeatureID, mapssvc.FeaturePatch{
				Properties: map[string]interface{}{"storeId": store.ID.Hex()},
			})
			if mergeErr == nil {
				updated, replaceErr := s.mapService.ReplaceFeatures(ctx, store.MapID, primitive.NilObjectID, features)
				mergeErr = replaceErr
				if replaceErr == nil {
					// Cập nhật cache để các cửa hàng sau trên cùng bản đồ thấy liên kết vừa ghi
					mapCache[store.MapID.Hex()] = &updated
				}
			}
			if mergeErr != nil {
				logger.WithModule("stores").WithFields(map[string]interface{}{
					"store_id": store.ID.Hex(),
					"map_id":   store.MapID.Hex(),
					"error":    mergeErr.Error(),
				}).Error("Repair: Ghi liên kết sửa chữa thất bại")
				report.addEntry(store, ReconcileStatusError, ReconcileReasonWriteFailed)
				continue
			}
			report.addEntry(store, ReconcileStatusFixed, "")

		default:
			report.addEntry(store, ReconcileStatusError, reason)
		}
	}

	logger.WithModule("stores").WithFields(map[string]interface{}{
		"total":   report.Total,
		"fixed":   report.Fixed,
		"skipped": report.Skipped,
		"errors":  report.Errors,
	}).Info("Repair: Hoàn tất sửa chữa liên kết cửa hàng")
	return report, nil
}

// addEntry thêm một dòng trạng thái vào báo cáo và cập nhật số liệu tổng hợp
func (r *ReconcileReport) addEntry(store *models.Store, status string, reason string) {
	r.Entries = append(r.Entries, ReconcileEntry{
		StoreID:   store.ID.Hex(),
		StoreName: store.Name,
		MapID:     store.MapID.Hex(),
		FeatureID: store.FeatureID,
		Status:    status,
		Reason:    reason,
	})
	r.Total++
	switch status {
	case ReconcileStatusOK:
		r.OK++
	case ReconcileStatusMissingLink:
		r.MissingLink++
	case ReconcileStatusFixed:
		r.Fixed++
	case ReconcileStatusSkipped:
		r.Skipped++
	case ReconcileStatusError:
		r.Errors++
	}
}
