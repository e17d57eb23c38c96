// Package router đăng ký các route thuộc domain maps.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	mapshdl "github.com/devwander/localiza-tech-api/internal/api/maps/handler"
	"github.com/devwander/localiza-tech-api/internal/api/middleware"
	apirouter "github.com/devwander/localiza-tech-api/internal/api/router"
)

// Register đăng ký tất cả route maps lên v1.
// Endpoint public (chỉ đọc, không lọc sở hữu) nằm ngoài nhóm xác thực.
// Route tĩnh (tags, CRUD generic) đặt trước route /:id để không bị nuốt param.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	mapHandler, err := mapshdl.NewMapHandler()
	if err != nil {
		return fmt.Errorf("failed to create map handler: %w", err)
	}

	// Route công khai, đăng ký trước khi tạo group có middleware
	v1.Get("/maps/public/:id", mapHandler.HandleFindOnePublic)

	maps := apirouter.NewGroupWithMiddleware(v1, "/maps", middleware.AuthMiddleware())

	maps.Get("/tags", mapHandler.HandleFindAllTags)

	// Bề mặt CRUD generic (lọc sở hữu qua BaseHandler)
	r.RegisterCRUDRoutes(maps, mapHandler, apirouter.ReadWriteConfig)

	maps.Post("/", mapHandler.HandleCreate)
	maps.Get("/", mapHandler.HandleFindAll)
	maps.Get("/:id", mapHandler.HandleFindById)
	maps.Put("/:id", mapHandler.HandleUpdate)
	maps.Delete("/:id", mapHandler.HandleDelete)

	// Các thao tác trên phần tử của bản đồ
	maps.Post("/:id/elements", mapHandler.HandleAddElement)
	maps.Get("/:id/elements/search", mapHandler.HandleSearchElements)
	maps.Put("/:id/elements/:elementId", mapHandler.HandleUpdateElement)
	maps.Delete("/:id/elements/:elementId", mapHandler.HandleRemoveElement)
	return nil
}
