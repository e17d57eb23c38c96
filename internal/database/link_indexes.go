// Package database - Index bổ sung cho maps/stores (compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"github.com/devwander/localiza-tech-api/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateLinkAdditionalIndexes tạo các index bổ sung cho maps/stores.
// Gọi sau CreateIndexes cho từng collection.
func CreateLinkAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// maps: (ownerId, name) — danh sách bản đồ của user kèm search theo tên
	maps := db.Collection(global.MongoDB_ColNames.Maps)
	if _, err := maps.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerId", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetName("map_owner_name"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// stores: (ownerId, category) — danh sách cửa hàng của user filter theo category
	stores := db.Collection(global.MongoDB_ColNames.Stores)
	if _, err := stores.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerId", Value: 1},
			{Key: "category", Value: 1},
		},
		Options: options.Index().SetName("store_owner_category"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// stores: (mapId, featureId) — lookup liên kết khi audit/repair và render plan.
	// Không unique: uniqueness của liên kết được enforce ở tầng nghiệp vụ (Conflict check),
	// dữ liệu cũ có thể chứa row trùng cần Reconciler xử lý thay vì bị chặn ghi.
	if _, err := stores.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "mapId", Value: 1},
			{Key: "featureId", Value: 1},
		},
		Options: options.Index().SetName("store_map_feature").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
