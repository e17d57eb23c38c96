package storessvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mapsmodels "github.com/devwander/localiza-tech-api/internal/api/maps/models"
	models "github.com/devwander/localiza-tech-api/internal/api/stores/models"
)

func linkedMap(featureID, storeID string) *mapsmodels.Map {
	return &mapsmodels.Map{
		ID:   primitive.NewObjectID(),
		Name: "Tầng 1",
		Features: []mapsmodels.Feature{
			{
				Type: "Feature",
				ID:   featureID,
				Properties: mapsmodels.FeatureProperties{
					Type:    mapsmodels.ElementTypeLocal,
					Name:    "Gian A1",
					StoreID: storeID,
				},
			},
		},
	}
}

func TestClassifyStoreLinkOK(t *testing.T) {
	store := &models.Store{ID: primitive.NewObjectID(), FeatureID: "f1"}
	mapDoc := linkedMap("f1", store.ID.Hex())

	status, reason := classifyStoreLink(store, mapDoc)
	assert.Equal(t, ReconcileStatusOK, status)
	assert.Empty(t, reason)
}

func TestClassifyStoreLinkMissing(t *testing.T) {
	store := &models.Store{ID: primitive.NewObjectID(), FeatureID: "f1"}

	// Phần tử tồn tại nhưng không mang storeId
	status, reason := classifyStoreLink(store, linkedMap("f1", ""))
	assert.Equal(t, ReconcileStatusMissingLink, status)
	assert.Empty(t, reason)

	// Phần tử mang storeId của cửa hàng khác
	status, _ = classifyStoreLink(store, linkedMap("f1", primitive.NewObjectID().Hex()))
	assert.Equal(t, ReconcileStatusMissingLink, status)
}

func TestClassifyStoreLinkMapNotFound(t *testing.T) {
	store := &models.Store{ID: primitive.NewObjectID(), FeatureID: "f1"}

	status, reason := classifyStoreLink(store, nil)
	assert.Equal(t, ReconcileStatusError, status)
	assert.Equal(t, ReconcileReasonMapNotFound, reason)
}

func TestClassifyStoreLinkFeatureNotFound(t *testing.T) {
	store := &models.Store{ID: primitive.NewObjectID(), FeatureID: "missing"}

	status, reason := classifyStoreLink(store, linkedMap("f1", store.ID.Hex()))
	assert.Equal(t, ReconcileStatusError, status)
	assert.Equal(t, ReconcileReasonFeatureNotFound, reason)
}

func TestReconcileReportCounts(t *testing.T) {
	report := &ReconcileReport{}
	storeA := &models.Store{ID: primitive.NewObjectID(), Name: "A", MapID: primitive.NewObjectID(), FeatureID: "f1"}
	storeB := &models.Store{ID: primitive.NewObjectID(), Name: "B", MapID: primitive.NewObjectID(), FeatureID: "f2"}

	report.addEntry(storeA, ReconcileStatusOK, "")
	report.addEntry(storeB, ReconcileStatusMissingLink, "")
	report.addEntry(storeB, ReconcileStatusFixed, "")
	report.addEntry(storeB, ReconcileStatusSkipped, "")
	report.addEntry(storeB, ReconcileStatusError, ReconcileReasonMapNotFound)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 1, report.OK)
	assert.Equal(t, 1, report.MissingLink)
	assert.Equal(t, 1, report.Fixed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Entries, 5)
	assert.Equal(t, storeA.ID.Hex(), report.Entries[0].StoreID)
	assert.Equal(t, ReconcileReasonMapNotFound, report.Entries[4].Reason)
}
