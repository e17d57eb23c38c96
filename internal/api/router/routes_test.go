package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCRUDHandler ghi nhận operation nào được gọi, trả 200 cho mọi request
type stubCRUDHandler struct {
	calls map[string]int
}

func newStubCRUDHandler() *stubCRUDHandler {
	return &stubCRUDHandler{calls: make(map[string]int)}
}

func (s *stubCRUDHandler) hit(c fiber.Ctx, op string) error {
	s.calls[op]++
	return c.SendString(op)
}

func (s *stubCRUDHandler) InsertOne(c fiber.Ctx) error          { return s.hit(c, "insert-one") }
func (s *stubCRUDHandler) InsertMany(c fiber.Ctx) error         { return s.hit(c, "insert-many") }
func (s *stubCRUDHandler) Find(c fiber.Ctx) error               { return s.hit(c, "find") }
func (s *stubCRUDHandler) FindOne(c fiber.Ctx) error            { return s.hit(c, "find-one") }
func (s *stubCRUDHandler) FindOneById(c fiber.Ctx) error        { return s.hit(c, "find-by-id") }
func (s *stubCRUDHandler) FindManyByIds(c fiber.Ctx) error      { return s.hit(c, "find-by-ids") }
func (s *stubCRUDHandler) FindWithPagination(c fiber.Ctx) error { return s.hit(c, "find-with-pagination") }
func (s *stubCRUDHandler) UpdateOne(c fiber.Ctx) error          { return s.hit(c, "update-one") }
func (s *stubCRUDHandler) UpdateMany(c fiber.Ctx) error         { return s.hit(c, "update-many") }
func (s *stubCRUDHandler) UpdateById(c fiber.Ctx) error         { return s.hit(c, "update-by-id") }
func (s *stubCRUDHandler) FindOneAndUpdate(c fiber.Ctx) error   { return s.hit(c, "find-one-and-update") }
func (s *stubCRUDHandler) DeleteOne(c fiber.Ctx) error          { return s.hit(c, "delete-one") }
func (s *stubCRUDHandler) DeleteMany(c fiber.Ctx) error         { return s.hit(c, "delete-many") }
func (s *stubCRUDHandler) DeleteById(c fiber.Ctx) error         { return s.hit(c, "delete-by-id") }
func (s *stubCRUDHandler) FindOneAndDelete(c fiber.Ctx) error   { return s.hit(c, "find-one-and-delete") }
func (s *stubCRUDHandler) CountDocuments(c fiber.Ctx) error     { return s.hit(c, "count") }
func (s *stubCRUDHandler) Distinct(c fiber.Ctx) error           { return s.hit(c, "distinct") }
func (s *stubCRUDHandler) Upsert(c fiber.Ctx) error             { return s.hit(c, "upsert-one") }
func (s *stubCRUDHandler) DocumentExists(c fiber.Ctx) error     { return s.hit(c, "exists") }

func doRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	return resp
}

func TestRegisterCRUDRoutesReadWrite(t *testing.T) {
	app := fiber.New()
	r := NewRouter(app)
	stub := newStubCRUDHandler()
	group := NewGroupWithMiddleware(app, "/items")
	r.RegisterCRUDRoutes(group, stub, ReadWriteConfig)

	cases := []struct {
		method string
		path   string
		op     string
	}{
		{fiber.MethodPost, "/items/insert-one", "insert-one"},
		{fiber.MethodPost, "/items/insert-many", "insert-many"},
		{fiber.MethodGet, "/items/find", "find"},
		{fiber.MethodGet, "/items/find-one", "find-one"},
		{fiber.MethodGet, "/items/find-by-id/abc", "find-by-id"},
		{fiber.MethodPost, "/items/find-by-ids", "find-by-ids"},
		{fiber.MethodGet, "/items/find-with-pagination", "find-with-pagination"},
		{fiber.MethodPut, "/items/update-one", "update-one"},
		{fiber.MethodPut, "/items/update-many", "update-many"},
		{fiber.MethodPut, "/items/update-by-id/abc", "update-by-id"},
		{fiber.MethodPut, "/items/find-one-and-update", "find-one-and-update"},
		{fiber.MethodDelete, "/items/delete-one", "delete-one"},
		{fiber.MethodDelete, "/items/delete-many", "delete-many"},
		{fiber.MethodDelete, "/items/delete-by-id/abc", "delete-by-id"},
		{fiber.MethodDelete, "/items/find-one-and-delete", "find-one-and-delete"},
		{fiber.MethodGet, "/items/count", "count"},
		{fiber.MethodGet, "/items/distinct/category", "distinct"},
		{fiber.MethodPost, "/items/upsert-one", "upsert-one"},
		{fiber.MethodGet, "/items/exists", "exists"},
	}
	for _, tc := range cases {
		resp := doRequest(t, app, tc.method, tc.path)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, tc.path)
		assert.Equal(t, 1, stub.calls[tc.op], tc.op)
	}
}

func TestRegisterCRUDRoutesReadOnlySkipsWrites(t *testing.T) {
	app := fiber.New()
	r := NewRouter(app)
	stub := newStubCRUDHandler()
	group := NewGroupWithMiddleware(app, "/items")
	r.RegisterCRUDRoutes(group, stub, ReadOnlyConfig)

	resp := doRequest(t, app, fiber.MethodGet, "/items/find")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Các operation ghi không được đăng ký
	for _, tc := range []struct{ method, path string }{
		{fiber.MethodPost, "/items/insert-one"},
		{fiber.MethodPut, "/items/update-by-id/abc"},
		{fiber.MethodDelete, "/items/delete-by-id/abc"},
		{fiber.MethodPost, "/items/upsert-one"},
	} {
		resp := doRequest(t, app, tc.method, tc.path)
		assert.NotEqual(t, fiber.StatusOK, resp.StatusCode, tc.path)
	}
	assert.Zero(t, stub.calls["insert-one"])
	assert.Zero(t, stub.calls["update-by-id"])
	assert.Zero(t, stub.calls["delete-by-id"])
	assert.Zero(t, stub.calls["upsert-one"])
}

func TestNewGroupWithMiddlewareRunsOncePerRequest(t *testing.T) {
	app := fiber.New()
	hits := 0
	counter := func(c fiber.Ctx) error {
		hits++
		return c.Next()
	}

	group := NewGroupWithMiddleware(app, "/items", counter)
	group.Get("/a", func(c fiber.Ctx) error { return c.SendString("a") })
	group.Get("/b", func(c fiber.Ctx) error { return c.SendString("b") })
	group.Get("/c", func(c fiber.Ctx) error { return c.SendString("c") })

	// Middleware chạy đúng một lượt mỗi request dù group có nhiều route
	resp := doRequest(t, app, fiber.MethodGet, "/items/a")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, hits)

	doRequest(t, app, fiber.MethodGet, "/items/b")
	assert.Equal(t, 2, hits)
}

func TestGroupMiddlewareSkipsRoutesOutsidePrefix(t *testing.T) {
	app := fiber.New()
	hits := 0
	counter := func(c fiber.Ctx) error {
		hits++
		return c.Next()
	}

	// Route công khai đăng ký trước khi tạo group, không đi qua middleware
	app.Get("/public", func(c fiber.Ctx) error { return c.SendString("public") })
	group := NewGroupWithMiddleware(app, "/items", counter)
	group.Get("/a", func(c fiber.Ctx) error { return c.SendString("a") })

	resp := doRequest(t, app, fiber.MethodGet, "/public")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, hits)
}
