package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/devwander/localiza-tech-api/config"
	authmodels "github.com/devwander/localiza-tech-api/internal/api/auth/models"
	"github.com/devwander/localiza-tech-api/internal/api/events"
	mapsmodels "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	storesmodels "github.com/devwander/localiza-tech-api/internal/api/stores/models"
	"github.com/devwander/localiza-tech-api/internal/database"
	"github.com/devwander/localiza-tech-api/internal/global"
	"github.com/devwander/localiza-tech-api/internal/logger"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initDataChangeHooks()  // Đăng ký hook cho sự kiện thay đổi dữ liệu
}

// Hàm đăng ký hook ghi audit log khi dữ liệu thay đổi qua CRUD
func initDataChangeHooks() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		fields := logrus.Fields{
			"collection": e.CollectionName,
			"operation":  e.Operation,
		}
		if ownerID := events.GetOwnerIDFromDocument(e.Document); !ownerID.IsZero() {
			fields["owner_id"] = ownerID.Hex()
		}
		logger.GetAuditLogger().WithFields(fields).Info("Data changed")
	})
	logrus.Info("Registered data change hooks")
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Users = "auth_users"
	global.MongoDB_ColNames.Maps = "maps"
	global.MongoDB_ColNames.Stores = "stores"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (global.InitValidator đăng ký custom validators: no_xss, strong_password, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo db và collections nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo index khi chạy với INITMODE=true
	if global.MongoDB_ServerConfig.InitMode {
		dbName := global.MongoDB_ServerConfig.MongoDB_DBName
		db := global.MongoDB_Session.Database(dbName)

		database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
		database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Maps), mapsmodels.Map{})
		database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Stores), storesmodels.Store{})

		// Index compound cho liên kết Store ↔ Feature
		if err := database.CreateLinkAdditionalIndexes(context.TODO(), db); err != nil {
			logrus.Fatalf("Failed to create link indexes: %v", err)
		}
		logrus.Info("Created indexes")
	}
}
