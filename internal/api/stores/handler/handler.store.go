// Package storeshdl - handler HTTP cho domain stores.
package storeshdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "github.com/devwander/localiza-tech-api/internal/api/base/handler"
	storesdto "github.com/devwander/localiza-tech-api/internal/api/stores/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
	storessvc "github.com/devwander/localiza-tech-api/internal/api/stores/service"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/logger"
)

// StoreHandler xử lý các request liên quan đến cửa hàng
type StoreHandler struct {
	*basehdl.BaseHandler[models.Store, storesdto.StoreCreateInput, storesdto.StoreUpdateInput]
	storeService *storessvc.StoreService
}

// NewStoreHandler tạo instance mới của StoreHandler
func NewStoreHandler() (*StoreHandler, error) {
	storeService, err := storessvc.NewStoreService()
	if err != nil {
		return nil, fmt.Errorf("failed to create store service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.Store, storesdto.StoreCreateInput, storesdto.StoreUpdateInput](storeService)
	return &StoreHandler{
		BaseHandler:  baseHandler,
		storeService: storeService,
	}, nil
}

// requireAuth lấy ObjectID của user hiện tại, lỗi nếu chưa xác thực
func (h *StoreHandler) requireAuth(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := h.GetUserIDFromContext(c)
	if userID == nil {
		return primitive.NilObjectID, common.ErrTokenMissing
	}
	return *userID, nil
}

// parseStoreID lấy ObjectID của cửa hàng từ URI params
func (h *StoreHandler) parseStoreID(c fiber.Ctx) (primitive.ObjectID, error) {
	storeID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "ID cửa hàng không hợp lệ", common.StatusBadRequest, err)
	}
	return storeID, nil
}

// HandleCreate tạo cửa hàng mới kèm liên kết với phần tử bản đồ
func (h *StoreHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input storesdto.StoreCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		store, err := h.storeService.CreateStoreWithLink(c.Context(), ownerID, &input)
		if err == nil {
			logger.LogCRUD("create", "store", store.ID.Hex(), c, map[string]interface{}{
				"map_id":     input.MapID,
				"feature_id": input.FeatureID,
			})
		}
		h.HandleResponse(c, store, err)
		return nil
	})
}

// HandleFindById lấy cửa hàng theo id (không lọc chủ sở hữu khi đọc)
func (h *StoreHandler) HandleFindById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		storeID, err := h.parseStoreID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		store, err := h.storeService.GetStore(c.Context(), storeID)
		h.HandleResponse(c, store, err)
		return nil
	})
}

// HandleFindAll liệt kê cửa hàng của người dùng hiện tại, phân trang + lọc
// theo category, chuỗi tìm kiếm (query) và bản đồ (mapId)
func (h *StoreHandler) HandleFindAll(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		criteria := storessvc.StoreListFilter{
			Category: c.Query("category"),
			Query:    c.Query("query"),
		}
		if mapIDHex := c.Query("mapId"); mapIDHex != "" {
			mapID, err := primitive.ObjectIDFromHex(mapIDHex)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID bản đồ không hợp lệ", common.StatusBadRequest, err))
				return nil
			}
			criteria.MapID = mapID
		}

		page, limit := h.ParsePagination(c)
		result, err := h.storeService.FindAllForOwner(c.Context(), ownerID, criteria, page, limit)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleFindByMapId liệt kê cửa hàng trên một bản đồ (công khai, phục vụ hiển thị)
func (h *StoreHandler) HandleFindByMapId(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		mapID, err := primitive.ObjectIDFromHex(c.Params("mapId"))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID bản đồ không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		stores, err := h.storeService.FindByMapID(c.Context(), mapID)
		h.HandleResponse(c, stores, err)
		return nil
	})
}

// HandleUpdate cập nhật cửa hàng, đổi mapId/featureId kích hoạt luồng relink
func (h *StoreHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		storeID, err := h.parseStoreID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input storesdto.StoreUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		store, err := h.storeService.UpdateStore(c.Context(), storeID, ownerID, &input)
		if err == nil {
			logger.LogCRUD("update", "store", storeID.Hex(), c, nil)
		}
		h.HandleResponse(c, store, err)
		return nil
	})
}

// HandleDelete xóa cửa hàng kèm gỡ liên kết best-effort trên bản đồ
func (h *StoreHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		storeID, err := h.parseStoreID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.storeService.DeleteStore(c.Context(), storeID, ownerID)
		if err == nil {
			logger.LogCRUD("delete", "store", storeID.Hex(), c, nil)
		}
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleFixCheck đối soát liên kết cửa hàng ↔ phần tử bản đồ, chỉ đọc
// @Router /stores/fix/check [get]
func (h *StoreHandler) HandleFixCheck(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		if _, err := h.requireAuth(c); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		report, err := h.storeService.Audit(c.Context())
		if err == nil {
			logger.LogReconcile("check", c, map[string]interface{}{
				"total":        report.Total,
				"ok":           report.OK,
				"missing_link": report.MissingLink,
				"errors":       report.Errors,
			})
		}
		h.HandleResponse(c, report, err)
		return nil
	})
}

// HandleFixApply sửa chữa các liên kết mất đồng bộ, idempotent
// @Router /stores/fix/apply [post]
func (h *StoreHandler) HandleFixApply(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		if _, err := h.requireAuth(c); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		report, err := h.storeService.Repair(c.Context())
		if err == nil {
			logger.LogReconcile("apply", c, map[string]interface{}{
				"total":   report.Total,
				"fixed":   report.Fixed,
				"skipped": report.Skipped,
				"errors":  report.Errors,
			})
		}
		h.HandleResponse(c, report, err)
		return nil
	})
}
