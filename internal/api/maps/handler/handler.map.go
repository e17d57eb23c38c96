// Package mapshdl - handler HTTP cho domain maps.
package mapshdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "github.com/devwander/localiza-tech-api/internal/api/base/handler"
	mapsdto "github.com/devwander/localiza-tech-api/internal/api/maps/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	mapssvc "github.com/devwander/localiza-tech-api/internal/api/maps/service"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/logger"
)

// MapHandler xử lý các request liên quan đến bản đồ
type MapHandler struct {
	*basehdl.BaseHandler[models.Map, mapsdto.MapCreateInput, mapsdto.MapUpdateInput]
	mapService *mapssvc.MapService
}

// NewMapHandler tạo instance mới của MapHandler
func NewMapHandler() (*MapHandler, error) {
	mapService, err := mapssvc.NewMapService()
	if err != nil {
		return nil, fmt.Errorf("failed to create map service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.Map, mapsdto.MapCreateInput, mapsdto.MapUpdateInput](mapService)
	return &MapHandler{
		BaseHandler: baseHandler,
		mapService:  mapService,
	}, nil
}

// requireAuth lấy ObjectID của user hiện tại, lỗi nếu chưa xác thực
func (h *MapHandler) requireAuth(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := h.GetUserIDFromContext(c)
	if userID == nil {
		return primitive.NilObjectID, common.ErrTokenMissing
	}
	return *userID, nil
}

// parseMapID lấy ObjectID của bản đồ từ URI params
func (h *MapHandler) parseMapID(c fiber.Ctx) (primitive.ObjectID, error) {
	mapID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "ID bản đồ không hợp lệ", common.StatusBadRequest, err)
	}
	return mapID, nil
}

// HandleCreate tạo bản đồ mới cho người dùng hiện tại
func (h *MapHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input mapsdto.MapCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapDoc, err := h.mapService.CreateMap(c.Context(), ownerID, &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogCRUD("create", "map", mapDoc.ID.Hex(), c, nil)
		h.HandleResponse(c, mapDoc, nil)
		return nil
	})
}

// HandleFindById lấy bản đồ theo id, chỉ chủ sở hữu truy cập được
func (h *MapHandler) HandleFindById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapDoc, err := h.mapService.GetMap(c.Context(), mapID, ownerID)
		h.HandleResponse(c, mapDoc, err)
		return nil
	})
}

// HandleFindOnePublic lấy bản đồ theo id không lọc chủ sở hữu (endpoint công khai, chỉ đọc)
func (h *MapHandler) HandleFindOnePublic(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapDoc, err := h.mapService.GetMap(c.Context(), mapID, primitive.NilObjectID)
		h.HandleResponse(c, mapDoc, err)
		return nil
	})
}

// HandleFindAll liệt kê bản đồ của người dùng hiện tại, phân trang + tìm theo tên
// + sắp xếp theo order (alphabetical | most_recent | oldest)
func (h *MapHandler) HandleFindAll(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, limit := h.ParsePagination(c)
		result, err := h.mapService.FindAllForOwner(c.Context(), ownerID, c.Query("name"), c.Query("order"), page, limit)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleFindAllTags liệt kê các tag trên bản đồ của người dùng hiện tại
func (h *MapHandler) HandleFindAllTags(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		tags, err := h.mapService.FindAllTags(c.Context(), ownerID)
		h.HandleResponse(c, tags, err)
		return nil
	})
}

// HandleUpdate cập nhật bản đồ của người dùng hiện tại
func (h *MapHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input mapsdto.MapUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapDoc, err := h.mapService.UpdateMap(c.Context(), mapID, ownerID, &input)
		if err == nil {
			logger.LogCRUD("update", "map", mapID.Hex(), c, nil)
		}
		h.HandleResponse(c, mapDoc, err)
		return nil
	})
}

// HandleDelete xóa bản đồ của người dùng hiện tại
func (h *MapHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.mapService.DeleteMap(c.Context(), mapID, ownerID)
		if err == nil {
			logger.LogCRUD("delete", "map", mapID.Hex(), c, nil)
		}
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleAddElement thêm phần tử vào bản đồ
func (h *MapHandler) HandleAddElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input mapsdto.ElementCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		feature, err := h.mapService.AddElement(c.Context(), mapID, ownerID, &input)
		if err == nil {
			logger.LogCRUD("create", "map_element", feature.ID, c, map[string]interface{}{"map_id": mapID.Hex()})
		}
		h.HandleResponse(c, feature, err)
		return nil
	})
}

// HandleUpdateElement cập nhật một phần phần tử của bản đồ
func (h *MapHandler) HandleUpdateElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		featureID := c.Params("elementId")
		if featureID == "" {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu ID phần tử", common.StatusBadRequest, nil))
			return nil
		}

		var input mapsdto.ElementUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		feature, err := h.mapService.UpdateElement(c.Context(), mapID, ownerID, featureID, &input)
		if err == nil {
			logger.LogCRUD("update", "map_element", featureID, c, map[string]interface{}{"map_id": mapID.Hex()})
		}
		h.HandleResponse(c, feature, err)
		return nil
	})
}

// HandleRemoveElement loại bỏ phần tử khỏi bản đồ
func (h *MapHandler) HandleRemoveElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		featureID := c.Params("elementId")
		if featureID == "" {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu ID phần tử", common.StatusBadRequest, nil))
			return nil
		}

		err = h.mapService.RemoveElement(c.Context(), mapID, ownerID, featureID)
		if err == nil {
			logger.LogCRUD("delete", "map_element", featureID, c, map[string]interface{}{"map_id": mapID.Hex()})
		}
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleSearchElements tìm phần tử trong bản đồ theo query `q`
func (h *MapHandler) HandleSearchElements(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ownerID, err := h.requireAuth(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		mapID, err := h.parseMapID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		features, err := h.mapService.SearchElements(c.Context(), mapID, ownerID, c.Query("q"))
		h.HandleResponse(c, features, err)
		return nil
	})
}
