// Package router đăng ký các route thuộc domain stores.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/devwander/localiza-tech-api/internal/api/middleware"
	apirouter "github.com/devwander/localiza-tech-api/internal/api/router"
	storeshdl "github.com/devwander/localiza-tech-api/internal/api/stores/handler"
)

// Register đăng ký tất cả route stores lên v1.
// Route tĩnh (fix/check, fix/apply, CRUD generic) đặt trước route /:id để không bị nuốt param.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	storeHandler, err := storeshdl.NewStoreHandler()
	if err != nil {
		return fmt.Errorf("failed to create store handler: %w", err)
	}

	// Route công khai, đăng ký trước khi tạo group có middleware
	v1.Get("/stores/map/:mapId", storeHandler.HandleFindByMapId)

	stores := apirouter.NewGroupWithMiddleware(v1, "/stores", middleware.AuthMiddleware())

	// Đối soát và sửa chữa liên kết Store ↔ Feature (kích hoạt thủ công)
	stores.Get("/fix/check", storeHandler.HandleFixCheck)
	stores.Post("/fix/apply", storeHandler.HandleFixApply)

	// Bề mặt truy vấn generic, chỉ đọc: mọi thao tác ghi cửa hàng phải đi qua
	// luồng liên kết (create/update/delete của domain)
	r.RegisterCRUDRoutes(stores, storeHandler, apirouter.ReadOnlyConfig)

	stores.Post("/", storeHandler.HandleCreate)
	stores.Get("/", storeHandler.HandleFindAll)
	stores.Get("/:id", storeHandler.HandleFindById)
	stores.Put("/:id", storeHandler.HandleUpdate)
	stores.Delete("/:id", storeHandler.HandleDelete)
	return nil
}
