package repositories

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"modelhub_backend/internal/models"
	"modelhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Asset{}))
	return db
}

func validAsset(ownerID string) *models.Asset {
	return &models.Asset{
		Name:          "Hut",
		Description:   "A small hut",
		FileURL:       "http://localhost/files/assets/1-hut.glb",
		StorageID:     "assets/1-hut.glb",
		OwnerID:       ownerID,
		VertexCount:   36,
		FileSizeBytes: 1024,
		AssetType:     models.AssetTypeStructure,
		ParcelType:    models.ParcelTypeSingle,
		HeightUnits:   3,
	}
}

func TestAssetRepository_CreateAssignsIDAndDefaults(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	asset := validAsset("owner-1")
	asset.Name = "  Hut  "
	asset.AssetType = ""
	asset.ParcelType = ""

	require.NoError(t, repo.Create(ctx, asset))

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, "Hut", asset.Name)
	assert.Equal(t, models.AssetTypeOther, asset.AssetType)
	assert.Equal(t, models.ParcelTypeNone, asset.ParcelType)

	stored, err := repo.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestAssetRepository_CreateValidation(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(a *models.Asset)
		wantMsg string
	}{
		{"empty name", func(a *models.Asset) { a.Name = "   " }, "name is required"},
		{"name too long", func(a *models.Asset) { a.Name = strings.Repeat("x", 101) }, "name cannot exceed 100 characters"},
		{"description too long", func(a *models.Asset) { a.Description = strings.Repeat("x", 501) }, "description cannot exceed 500 characters"},
		{"missing file url", func(a *models.Asset) { a.FileURL = "" }, "fileUrl is required"},
		{"missing storage id", func(a *models.Asset) { a.StorageID = "" }, "storageId is required"},
		{"missing owner", func(a *models.Asset) { a.OwnerID = "" }, "ownerId is required"},
		{"negative vertex count", func(a *models.Asset) { a.VertexCount = -1 }, "vertexCount cannot be negative"},
		{"negative height", func(a *models.Asset) { a.HeightUnits = -2 }, "heightUnits cannot be negative"},
		{"invalid asset type", func(a *models.Asset) { a.AssetType = "castle" }, "assetType must be one of"},
		{"invalid parcel type", func(a *models.Asset) { a.ParcelType = "huge" }, "parcelType must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := validAsset("owner-1")
			tt.mutate(asset)

			err := repo.Create(ctx, asset)
			require.Error(t, err)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			assert.Contains(t, appErr.Message, tt.wantMsg)
		})
	}
}

func TestAssetRepository_FindByIDNotFound(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestAssetRepository_UpdateOnlyTouchesNameAndDescription(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	asset := validAsset("owner-1")
	require.NoError(t, repo.Create(ctx, asset))

	// Smuggle changed derived fields into the update; only name and
	// description may land.
	patched := *asset
	patched.Name = "New Hut"
	patched.Description = "Updated"
	patched.VertexCount = 9999
	patched.FileSizeBytes = 9999
	patched.OwnerID = "someone-else"
	patched.FileURL = "http://evil/file"
	patched.StorageID = "evil"

	require.NoError(t, repo.Update(ctx, &patched))

	stored, err := repo.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Hut", stored.Name)
	assert.Equal(t, "Updated", stored.Description)
	assert.Equal(t, asset.VertexCount, stored.VertexCount)
	assert.Equal(t, asset.FileSizeBytes, stored.FileSizeBytes)
	assert.Equal(t, asset.OwnerID, stored.OwnerID)
	assert.Equal(t, asset.FileURL, stored.FileURL)
	assert.Equal(t, asset.StorageID, stored.StorageID)
}

func TestAssetRepository_UpdateMissingRecord(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))

	asset := validAsset("owner-1")
	asset.ID = "missing-id"

	err := repo.Update(context.Background(), asset)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestAssetRepository_Delete(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	asset := validAsset("owner-1")
	require.NoError(t, repo.Create(ctx, asset))

	require.NoError(t, repo.Delete(ctx, asset.ID))

	_, err := repo.FindByID(ctx, asset.ID)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, asset.ID), ErrAssetNotFound)
}

func TestAssetRepository_FindAllOrdersNewestFirst(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"oldest", "middle", "newest"} {
		asset := validAsset("owner-1")
		asset.Name = name
		asset.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, asset))
	}

	assets, err := repo.FindAll(ctx, AssetFilter{})
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, "newest", assets[0].Name)
	assert.Equal(t, "middle", assets[1].Name)
	assert.Equal(t, "oldest", assets[2].Name)
}

func TestAssetRepository_FindAllOwnerFilter(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))
	ctx := context.Background()

	mine := validAsset("owner-1")
	require.NoError(t, repo.Create(ctx, mine))
	theirs := validAsset("owner-2")
	require.NoError(t, repo.Create(ctx, theirs))

	assets, err := repo.FindAll(ctx, AssetFilter{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "owner-1", assets[0].OwnerID)
}

func TestAssetRepository_FindAllEmptyCatalog(t *testing.T) {
	repo := NewAssetRepository(newTestDB(t))

	assets, err := repo.FindAll(context.Background(), AssetFilter{})
	require.NoError(t, err)
	assert.Empty(t, assets)
}
