// Package router đăng ký các route thuộc domain auth: Auth, Admin, System.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "github.com/devwander/localiza-tech-api/internal/api/auth/handler"
	basehdl "github.com/devwander/localiza-tech-api/internal/api/base/handler"
	"github.com/devwander/localiza-tech-api/internal/api/middleware"
	apirouter "github.com/devwander/localiza-tech-api/internal/api/router"
)

// Register đăng ký tất cả route auth (system, auth) lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerAuthRoutes(v1); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler := basehdl.NewSystemHandler()
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	// Route công khai, đăng ký trước khi tạo group có middleware
	router.Post("/auth/register", userHandler.HandleRegister)
	router.Post("/auth/login", userHandler.HandleLogin)

	auth := apirouter.NewGroupWithMiddleware(router, "/auth", middleware.AuthMiddleware())
	auth.Post("/logout", userHandler.HandleLogout)
	auth.Get("/profile", userHandler.HandleGetProfile)
	auth.Put("/profile", userHandler.HandleUpdateProfile)
	auth.Put("/change-password", userHandler.HandleChangePassword)
	return nil
}
