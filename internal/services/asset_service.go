package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"modelhub_backend/internal/gltf"
	"modelhub_backend/internal/logger"
	"modelhub_backend/internal/models"
	"modelhub_backend/internal/repositories"
	"modelhub_backend/internal/services/dto"
	"modelhub_backend/internal/storage"
	"modelhub_backend/pkg/apperrors"
)

// ============================================
// ASSET SERVICE
// ============================================

type AssetService interface {
	// Ingest runs the full pipeline: validate -> upload -> parse -> create.
	Ingest(ctx context.Context, req *dto.IngestAssetRequest) (*models.Asset, error)

	// Update applies the owner-checked patch (name/description only).
	Update(ctx context.Context, id, ownerID string, patch *dto.UpdateAssetRequest) (*models.Asset, error)

	// Delete removes the catalog record and best-effort deletes the blob.
	Delete(ctx context.Context, id, ownerID string) error

	// Get returns one record in presentation shape.
	Get(ctx context.Context, id string) (*dto.AssetResponse, error)

	// List returns records newest first, optionally for one owner.
	List(ctx context.Context, filter dto.AssetListFilter) ([]dto.AssetResponse, error)
}

// AssetConfig bounds the ingestion path.
type AssetConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

type assetService struct {
	assetRepo repositories.AssetRepository
	userRepo  repositories.UserRepository
	storage   storage.Storage
	config    AssetConfig
}

func NewAssetService(
	assetRepo repositories.AssetRepository,
	userRepo repositories.UserRepository,
	storageInstance storage.Storage,
	config AssetConfig,
) AssetService {
	if config.MaxFileSize == 0 {
		config.MaxFileSize = 10 * 1024 * 1024
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".glb", ".gltf"}
	}

	return &assetService{
		assetRepo: assetRepo,
		userRepo:  userRepo,
		storage:   storageInstance,
		config:    config,
	}
}

// ============================================
// INGESTION PIPELINE
// ============================================

// Ingest validates the buffer, uploads it, parses it and creates the
// catalog record, strictly in that order; each failure aborts all later
// steps. The record is created last, so no partially-created record is
// ever visible in listings.
//
// Parsing runs after the upload. A parse failure therefore leaves an
// orphaned blob behind; that inconsistency is accepted rather than
// chased with a rollback, because blob deletion can itself fail and a
// rollback chain only relocates the window.
func (s *assetService) Ingest(ctx context.Context, req *dto.IngestAssetRequest) (*models.Asset, error) {
	// Step 1: buffer present, extension accepted
	if len(req.Data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !s.extensionAllowed(ext) {
		return nil, apperrors.ErrInvalidFileType
	}

	// Step 2: size ceiling
	if int64(len(req.Data)) > s.config.MaxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	// Step 3: blob upload. On failure nothing was created, nothing to
	// roll back.
	ref, err := s.storage.Upload(ctx, bytes.NewReader(req.Data), int64(len(req.Data)), req.FileName, contentTypeFor(ext))
	if err != nil {
		return nil, err
	}

	// Step 4: authoritative vertex count
	vertexCount, err := gltf.CountVertices(req.Data)
	if err != nil {
		logger.Warn("container rejected after upload, blob orphaned",
			"storage_id", ref.StorageID, "error", err)
		return nil, mapParserError(err)
	}

	// Step 5: catalog record, created last
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(req.FileName), ext)
	}

	asset := &models.Asset{
		Name:          name,
		Description:   req.Description,
		FileURL:       ref.URL,
		StorageID:     ref.StorageID,
		OwnerID:       req.OwnerID,
		VertexCount:   vertexCount,
		FileSizeBytes: int64(len(req.Data)),
		AssetType:     models.AssetType(req.AssetType),
		ParcelType:    models.ParcelType(req.ParcelType),
		HeightUnits:   req.HeightUnits,
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	logger.Info("asset ingested",
		"asset_id", asset.ID,
		"owner_id", asset.OwnerID,
		"vertex_count", asset.VertexCount,
		"size_bytes", asset.FileSizeBytes,
	)

	return asset, nil
}

// ============================================
// MUTATION
// ============================================

// Update loads, owner-checks and patches a record. Only name and
// description can change; derived fields are untouchable here.
//
// There is no version token: two concurrent updates on the same record
// race and the later write wins silently.
func (s *assetService) Update(ctx context.Context, id, ownerID string, patch *dto.UpdateAssetRequest) (*models.Asset, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, handleAssetError(err)
	}

	if asset.OwnerID != ownerID {
		return nil, apperrors.ErrNotOwner
	}

	if patch.Name != nil {
		asset.Name = *patch.Name
	}
	if patch.Description != nil {
		asset.Description = *patch.Description
	}

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, handleAssetError(err)
	}

	return asset, nil
}

// Delete owner-checks the record, then removes blob and row. The catalog
// row is the authoritative index users observe, so a failing blob delete
// is logged and swallowed: leaking an orphaned blob beats leaving a
// visible record nobody can remove.
func (s *assetService) Delete(ctx context.Context, id, ownerID string) error {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return handleAssetError(err)
	}

	if asset.OwnerID != ownerID {
		return apperrors.ErrNotOwner
	}

	if err := s.storage.Delete(ctx, asset.StorageID); err != nil {
		logger.Warn("blob deletion failed, removing catalog record anyway",
			"asset_id", asset.ID, "storage_id", asset.StorageID, "error", err)
	}

	if err := s.assetRepo.Delete(ctx, id); err != nil {
		return handleAssetError(err)
	}

	logger.Info("asset deleted", "asset_id", id, "owner_id", ownerID)
	return nil
}

// ============================================
// QUERIES
// ============================================

func (s *assetService) Get(ctx context.Context, id string) (*dto.AssetResponse, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, handleAssetError(err)
	}

	names := map[string]string{}
	resp := s.toResponse(ctx, asset, names)
	return &resp, nil
}

func (s *assetService) List(ctx context.Context, filter dto.AssetListFilter) ([]dto.AssetResponse, error) {
	assets, err := s.assetRepo.FindAll(ctx, repositories.AssetFilter{OwnerID: filter.OwnerID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	names := map[string]string{}
	responses := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		responses = append(responses, s.toResponse(ctx, &assets[i], names))
	}
	return responses, nil
}

// toResponse shapes one record for presentation, resolving the owner's
// display name through the cache. Resolution failure is never an error;
// the owner shows up as "Unknown".
func (s *assetService) toResponse(ctx context.Context, asset *models.Asset, nameCache map[string]string) dto.AssetResponse {
	uploaderName, ok := nameCache[asset.OwnerID]
	if !ok {
		uploaderName = "Unknown"
		if user, err := s.userRepo.FindByID(ctx, asset.OwnerID); err == nil {
			uploaderName = user.Username
		}
		nameCache[asset.OwnerID] = uploaderName
	}

	return dto.AssetResponse{
		ID:            asset.ID,
		Name:          asset.Name,
		Description:   asset.Description,
		FileURL:       asset.FileURL,
		UploaderName:  uploaderName,
		VertexCount:   asset.VertexCount,
		FileSizeBytes: asset.FileSizeBytes,
		AssetType:     asset.AssetType,
		ParcelType:    asset.ParcelType,
		HeightUnits:   asset.HeightUnits,
		CreatedAt:     asset.CreatedAt,
	}
}

// ============================================
// HELPERS
// ============================================

func (s *assetService) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".glb":
		return "model/gltf-binary"
	case ".gltf":
		return "model/gltf+json"
	default:
		return "application/octet-stream"
	}
}

func mapParserError(err error) error {
	switch {
	case apperrors.Is(err, gltf.ErrUnsupported):
		return apperrors.ErrUnsupportedStructure(err)
	case apperrors.Is(err, gltf.ErrMalformed):
		return apperrors.ErrMalformedContainer(err)
	default:
		return apperrors.InternalError(err)
	}
}

func handleAssetError(err error) error {
	if apperrors.Is(err, repositories.ErrAssetNotFound) {
		return apperrors.ErrNotFound(err)
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.InternalError(err)
}
