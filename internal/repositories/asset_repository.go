package repositories

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"modelhub_backend/internal/models"
	"modelhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var ErrAssetNotFound = errors.New("asset not found")

// AssetFilter narrows listings. Zero value means "everything".
type AssetFilter struct {
	OwnerID string
}

type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context, filter AssetFilter) ([]models.Asset, error)
}

type AssetRepositoryImpl struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &AssetRepositoryImpl{db: db}
}

// Create persists a new record. Field-level validation runs here, at the
// store boundary, so the ingestion and mutation paths cannot drift apart.
func (r *AssetRepositoryImpl) Create(ctx context.Context, asset *models.Asset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *AssetRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepositoryImpl) Update(ctx context.Context, asset *models.Asset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("id = ?", asset.ID).
		Updates(map[string]interface{}{
			"name":        asset.Name,
			"description": asset.Description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (r *AssetRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// FindAll returns records newest first. The created_at and owner_id
// indexes keep this sub-linear as the catalog grows.
func (r *AssetRepositoryImpl) FindAll(ctx context.Context, filter AssetFilter) ([]models.Asset, error) {
	query := r.db.WithContext(ctx).Model(&models.Asset{}).Order("created_at DESC")

	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// validateAsset is the single point of truth for record shape. It trims
// and defaults first, then reports the first violated constraint.
func validateAsset(asset *models.Asset) error {
	asset.Name = strings.TrimSpace(asset.Name)
	asset.Description = strings.TrimSpace(asset.Description)
	if asset.AssetType == "" {
		asset.AssetType = models.AssetTypeOther
	}
	if asset.ParcelType == "" {
		asset.ParcelType = models.ParcelTypeNone
	}

	switch {
	case asset.Name == "":
		return validationFailed("name is required")
	case len(asset.Name) > 100:
		return validationFailed("name cannot exceed 100 characters")
	case len(asset.Description) > 500:
		return validationFailed("description cannot exceed 500 characters")
	case asset.FileURL == "":
		return validationFailed("fileUrl is required")
	case asset.StorageID == "":
		return validationFailed("storageId is required")
	case asset.OwnerID == "":
		return validationFailed("ownerId is required")
	case asset.VertexCount < 0:
		return validationFailed("vertexCount cannot be negative")
	case asset.FileSizeBytes < 0:
		return validationFailed("fileSizeBytes cannot be negative")
	case asset.HeightUnits < 0:
		return validationFailed("heightUnits cannot be negative")
	case !models.ValidAssetType(asset.AssetType):
		return validationFailed("assetType must be one of: structure, prop, other")
	case !models.ValidParcelType(asset.ParcelType):
		return validationFailed("parcelType must be one of: single, double, block, double-block, super-block, none")
	}

	return nil
}

func validationFailed(constraint string) error {
	return apperrors.New(apperrors.CodeValidationFailed, "catalog", constraint, http.StatusBadRequest)
}
