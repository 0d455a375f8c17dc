package services_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"modelhub_backend/internal/models"
	"modelhub_backend/internal/repositories"
	"modelhub_backend/internal/services"
	"modelhub_backend/internal/services/dto"
	"modelhub_backend/internal/storage"
	"modelhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStorage stands in for the blob gateway so pipeline ordering and
// failure policy can be observed directly.
type fakeStorage struct {
	uploads   int
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStorage) Upload(ctx context.Context, reader io.Reader, size int64, suggestedName, contentType string) (*storage.ObjectRef, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads++
	key := fmt.Sprintf("assets/%d-%s", f.uploads, suggestedName)
	return &storage.ObjectRef{
		URL:       "http://blobs.test/" + key,
		StorageID: key,
	}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, storageID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, storageID)
	return nil
}

type fixture struct {
	service services.AssetService
	storage *fakeStorage
	assets  repositories.AssetRepository
	users   repositories.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Asset{}))

	fs := &fakeStorage{}
	assetRepo := repositories.NewAssetRepository(db)
	userRepo := repositories.NewUserRepository(db)

	return &fixture{
		service: services.NewAssetService(assetRepo, userRepo, fs, services.AssetConfig{
			MaxFileSize: 10 * 1024 * 1024,
		}),
		storage: fs,
		assets:  assetRepo,
		users:   userRepo,
	}
}

// buildGLB assembles a minimal valid GLB around the given scene JSON.
func buildGLB(t *testing.T, jsonDoc string) []byte {
	t.Helper()

	payload := []byte(jsonDoc)
	for len(payload)%4 != 0 {
		payload = append(payload, ' ')
	}

	buf := new(bytes.Buffer)
	write := func(v uint32) {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
	}
	write(0x46546C67) // "glTF"
	write(2)
	write(uint32(12 + 8 + len(payload)))
	write(uint32(len(payload)))
	write(0x4E4F534A) // "JSON"
	buf.Write(payload)
	return buf.Bytes()
}

// hutGLB is one mesh with a 24-entry position array and a 36-entry index
// list, so the authoritative count is 36.
func hutGLB(t *testing.T) []byte {
	return buildGLB(t, `{
		"scenes":[{"nodes":[0]}],
		"nodes":[{"mesh":0}],
		"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":1}]}],
		"accessors":[{"count":24},{"count":36}]
	}`)
}

func ingestReq(t *testing.T, name string) *dto.IngestAssetRequest {
	return &dto.IngestAssetRequest{
		Name:       name,
		AssetType:  "structure",
		ParcelType: "single",
		FileName:   "hut.glb",
		Data:       hutGLB(t),
		OwnerID:    "owner-1",
	}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// ============================================
// INGESTION
// ============================================

func TestIngest_Success(t *testing.T) {
	f := newFixture(t)

	asset, err := f.service.Ingest(context.Background(), ingestReq(t, "Hut"))
	require.NoError(t, err)

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, "Hut", asset.Name)
	assert.Equal(t, int64(36), asset.VertexCount)
	assert.Equal(t, int64(len(hutGLB(t))), asset.FileSizeBytes)
	assert.Equal(t, models.AssetTypeStructure, asset.AssetType)
	assert.Equal(t, models.ParcelTypeSingle, asset.ParcelType)
	assert.Equal(t, "owner-1", asset.OwnerID)
	assert.NotEmpty(t, asset.FileURL)
	assert.NotEmpty(t, asset.StorageID)
}

func TestIngest_RejectsBadExtensionBeforeUpload(t *testing.T) {
	f := newFixture(t)

	req := ingestReq(t, "Hut")
	req.FileName = "hut.txt"

	_, err := f.service.Ingest(context.Background(), req)
	assertCode(t, err, apperrors.CodeInvalidInput)

	// The gateway must never have been called.
	assert.Zero(t, f.storage.uploads)
}

func TestIngest_RejectsEmptyBuffer(t *testing.T) {
	f := newFixture(t)

	req := ingestReq(t, "Hut")
	req.Data = nil

	_, err := f.service.Ingest(context.Background(), req)
	assertCode(t, err, apperrors.CodeInvalidInput)
	assert.Zero(t, f.storage.uploads)
}

func TestIngest_RejectsOversizedBuffer(t *testing.T) {
	f := newFixture(t)
	small := services.NewAssetService(f.assets, f.users, f.storage, services.AssetConfig{
		MaxFileSize: 8,
	})

	_, err := small.Ingest(context.Background(), ingestReq(t, "Hut"))
	assertCode(t, err, apperrors.CodePayloadTooLarge)
	assert.Zero(t, f.storage.uploads)
}

func TestIngest_StorageFailureCreatesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.storage.uploadErr = apperrors.ErrStorageUnavailable(errors.New("connection refused"))

	_, err := f.service.Ingest(context.Background(), ingestReq(t, "Hut"))
	assertCode(t, err, apperrors.CodeStorageUnavailable)

	assets, listErr := f.assets.FindAll(context.Background(), repositories.AssetFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, assets)
}

func TestIngest_ParseFailureLeavesOrphanedBlobButNoRecord(t *testing.T) {
	f := newFixture(t)

	req := ingestReq(t, "Hut")
	req.Data = []byte("this is not a container")

	_, err := f.service.Ingest(context.Background(), req)
	assertCode(t, err, apperrors.CodeMalformedContainer)

	// Upload happened before parsing; the blob is orphaned by design.
	assert.Equal(t, 1, f.storage.uploads)

	assets, listErr := f.assets.FindAll(context.Background(), repositories.AssetFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, assets)
}

func TestIngest_UnsupportedGeometry(t *testing.T) {
	f := newFixture(t)

	req := ingestReq(t, "Hut")
	req.Data = buildGLB(t, `{
		"scenes":[{"nodes":[0]}],
		"nodes":[{"mesh":0}],
		"meshes":[{"primitives":[{"attributes":{"NORMAL":0}}]}],
		"accessors":[{"count":24}]
	}`)

	_, err := f.service.Ingest(context.Background(), req)
	assertCode(t, err, apperrors.CodeUnsupportedStructure)
}

func TestIngest_SameBufferTwiceGetsDistinctIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)
	second, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.StorageID, second.StorageID)
	assert.Equal(t, first.VertexCount, second.VertexCount)
}

func TestIngest_BlankNameFallsBackToFilename(t *testing.T) {
	f := newFixture(t)

	req := ingestReq(t, "   ")
	req.FileName = "my-hut.glb"

	asset, err := f.service.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "my-hut", asset.Name)
}

// ============================================
// UPDATE
// ============================================

func TestUpdate_AppliesOnlyNameAndDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	newName := "New"
	updated, err := f.service.Update(ctx, created.ID, "owner-1", &dto.UpdateAssetRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.VertexCount, updated.VertexCount)
	assert.Equal(t, created.FileSizeBytes, updated.FileSizeBytes)
	assert.Equal(t, created.OwnerID, updated.OwnerID)
	assert.Equal(t, created.FileURL, updated.FileURL)
	assert.Equal(t, created.StorageID, updated.StorageID)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	name := "New"
	_, err := f.service.Update(context.Background(), "missing", "owner-1", &dto.UpdateAssetRequest{Name: &name})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	name := "Stolen"
	_, err = f.service.Update(ctx, created.ID, "owner-2", &dto.UpdateAssetRequest{Name: &name})
	assertCode(t, err, apperrors.CodeForbidden)

	stored, err := f.assets.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hut", stored.Name)
}

// ============================================
// DELETE
// ============================================

func TestDelete_RemovesRecordAndBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.ID, "owner-1"))

	assert.Equal(t, []string{created.StorageID}, f.storage.deleted)

	_, err = f.service.Get(ctx, created.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestDelete_NonOwnerForbiddenLeavesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	err = f.service.Delete(ctx, created.ID, "owner-2")
	assertCode(t, err, apperrors.CodeForbidden)

	// Record intact, blob untouched.
	assert.Empty(t, f.storage.deleted)
	stored, err := f.assets.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.StorageID, stored.StorageID)
}

func TestDelete_SwallowsBlobStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	f.storage.deleteErr = apperrors.ErrStorageUnavailable(errors.New("connection refused"))

	// The catalog row must go even though the blob delete failed.
	require.NoError(t, f.service.Delete(ctx, created.ID, "owner-1"))

	_, err = f.service.Get(ctx, created.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	list, err := f.service.List(ctx, dto.AssetListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.service.Delete(context.Background(), "missing", "owner-1")
	assertCode(t, err, apperrors.CodeNotFound)
}

// ============================================
// QUERIES
// ============================================

func TestList_EmptyCatalog(t *testing.T) {
	f := newFixture(t)

	list, err := f.service.List(context.Background(), dto.AssetListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestList_ResolvesUploaderNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@test.com", PasswordHash: "x"}
	require.NoError(t, f.users.Create(ctx, user))

	req := ingestReq(t, "Hut")
	req.OwnerID = user.ID
	_, err := f.service.Ingest(ctx, req)
	require.NoError(t, err)

	// Second record from a principal the user store cannot resolve.
	_, err = f.service.Ingest(ctx, ingestReq(t, "Orphan"))
	require.NoError(t, err)

	list, err := f.service.List(ctx, dto.AssetListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]string{}
	for _, item := range list {
		byName[item.Name] = item.UploaderName
	}
	assert.Equal(t, "alice", byName["Hut"])
	assert.Equal(t, "Unknown", byName["Orphan"])
}

func TestList_OwnerFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Ingest(ctx, ingestReq(t, "Mine"))
	require.NoError(t, err)

	other := ingestReq(t, "Theirs")
	other.OwnerID = "owner-2"
	_, err = f.service.Ingest(ctx, other)
	require.NoError(t, err)

	list, err := f.service.List(ctx, dto.AssetListFilter{OwnerID: "owner-2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Theirs", list[0].Name)
}

func TestGet_ShapesPresentation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Ingest(ctx, ingestReq(t, "Hut"))
	require.NoError(t, err)

	resp, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, int64(36), resp.VertexCount)
	assert.Equal(t, "Unknown", resp.UploaderName)
	assert.Equal(t, created.FileURL, resp.FileURL)
}
