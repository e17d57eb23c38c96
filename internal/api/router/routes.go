// Package router - hạ tầng định tuyến chung cho API.
package router

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================================
// ⚠️ QUAN TRỌNG: BUG FIBER V3 - CÁCH ĐĂNG KÝ MIDDLEWARE
// ============================================================================
//
// Fiber v3 có bug với cách đăng ký middleware trực tiếp trong route:
// router.Get("/path", middleware, handler) → middleware KHÔNG được gọi!
//
// ✅ PHẢI DÙNG NewGroupWithMiddleware: tạo group với prefix rồi gắn middleware
// qua .Use() MỘT LẦN cho cả nhóm, sau đó đăng ký route tương đối trên group.
// Gắn middleware một lần mỗi prefix: mỗi request chỉ đi qua chuỗi middleware
// đúng một lượt, không lặp lại theo số route đã đăng ký.
// ============================================================================

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// NewGroupWithMiddleware tạo group với prefix và gắn middleware qua .Use()
// (cách đúng theo Fiber v3, xem chú thích ở đầu file). Dùng từ domain router:
// route công khai đăng ký trực tiếp trên v1 TRƯỚC khi tạo group để không bị
// middleware của group chặn.
func NewGroupWithMiddleware(router fiber.Router, prefix string, middlewares ...fiber.Handler) fiber.Router {
	group := router.Group(prefix)
	for _, mw := range middlewares {
		group.Use(mw)
	}
	return group
}

// CRUDHandler định nghĩa interface cho các handler CRUD generic.
// BaseHandler của mọi domain đều thỏa interface này.
type CRUDHandler interface {
	InsertOne(c fiber.Ctx) error
	InsertMany(c fiber.Ctx) error
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindManyByIds(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error
	UpdateOne(c fiber.Ctx) error
	UpdateMany(c fiber.Ctx) error
	UpdateById(c fiber.Ctx) error
	FindOneAndUpdate(c fiber.Ctx) error
	DeleteOne(c fiber.Ctx) error
	DeleteMany(c fiber.Ctx) error
	DeleteById(c fiber.Ctx) error
	FindOneAndDelete(c fiber.Ctx) error
	CountDocuments(c fiber.Ctx) error
	Distinct(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// CRUDConfig cấu hình các operation được phép cho mỗi collection
type CRUDConfig struct {
	// Create
	InsOne  bool // Insert One
	InsMany bool // Insert Many

	// Read
	Find     bool // Find All
	FindOne  bool // Find One
	FindById bool // Find By Id
	FindIds  bool // Find Many By Ids
	Paginate bool // Find With Pagination

	// Update
	UpdOne  bool // Update One
	UpdMany bool // Update Many
	UpdById bool // Update By Id
	FindUpd bool // Find One And Update

	// Delete
	DelOne  bool // Delete One
	DelMany bool // Delete Many
	DelById bool // Delete By Id
	FindDel bool // Find One And Delete

	// Other
	Count    bool // Count Documents
	Distinct bool // Distinct
	Upsert   bool // Upsert One
	Exists   bool // Document Exists
}

// Config dùng chung cho các collection.
var (
	// ReadOnlyConfig chỉ cho phép đọc (find, count, distinct, exists).
	ReadOnlyConfig = CRUDConfig{
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		Count: true, Distinct: true, Exists: true,
	}

	// ReadWriteConfig cho phép đầy đủ CRUD.
	ReadWriteConfig = CRUDConfig{
		InsOne: true, InsMany: true,
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		UpdOne: true, UpdMany: true, UpdById: true,
		FindUpd: true,
		DelOne:  true, DelMany: true, DelById: true,
		FindDel: true,
		Count:   true, Distinct: true,
		Upsert: true, Exists: true,
	}
)

// RegisterCRUDRoutes đăng ký các route CRUD generic trên group đã gắn middleware.
// Gọi TRƯỚC các route có tham số (/:id) của domain để path cố định không bị
// route tham số nuốt mất.
func (r *Router) RegisterCRUDRoutes(group fiber.Router, h CRUDHandler, config CRUDConfig) {
	// Create operations
	if config.InsOne {
		group.Post("/insert-one", h.InsertOne)
	}
	if config.InsMany {
		group.Post("/insert-many", h.InsertMany)
	}

	// Read operations
	if config.Find {
		group.Get("/find", h.Find)
	}
	if config.FindOne {
		group.Get("/find-one", h.FindOne)
	}
	if config.FindById {
		group.Get("/find-by-id/:id", h.FindOneById)
	}
	if config.FindIds {
		group.Post("/find-by-ids", h.FindManyByIds)
	}
	if config.Paginate {
		group.Get("/find-with-pagination", h.FindWithPagination)
	}

	// Update operations
	if config.UpdOne {
		group.Put("/update-one", h.UpdateOne)
	}
	if config.UpdMany {
		group.Put("/update-many", h.UpdateMany)
	}
	if config.UpdById {
		group.Put("/update-by-id/:id", h.UpdateById)
	}
	if config.FindUpd {
		group.Put("/find-one-and-update", h.FindOneAndUpdate)
	}

	// Delete operations
	if config.DelOne {
		group.Delete("/delete-one", h.DeleteOne)
	}
	if config.DelMany {
		group.Delete("/delete-many", h.DeleteMany)
	}
	if config.DelById {
		group.Delete("/delete-by-id/:id", h.DeleteById)
	}
	if config.FindDel {
		group.Delete("/find-one-and-delete", h.FindOneAndDelete)
	}

	// Other operations
	if config.Count {
		group.Get("/count", h.CountDocuments)
	}
	if config.Distinct {
		group.Get("/distinct/:field", h.Distinct)
	}
	if config.Upsert {
		group.Post("/upsert-one", h.Upsert)
	}
	if config.Exists {
		group.Get("/exists", h.DocumentExists)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả các route cho ứng dụng.
// Caller truyền lần lượt Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
