package dto

import (
	"time"

	"modelhub_backend/internal/models"
)

// IngestAssetRequest carries the multipart payload of one ingestion.
// File bytes, file name and the authenticated principal are filled in by
// the handler, never bound from the form.
type IngestAssetRequest struct {
	Name        string  `form:"name" json:"name" validate:"omitempty,max=100"`
	Description string  `form:"description" json:"description" validate:"omitempty,max=500"`
	AssetType   string  `form:"assetType" json:"assetType" validate:"omitempty,assettype"`
	ParcelType  string  `form:"parcelType" json:"parcelType" validate:"omitempty,parceltype"`
	HeightUnits float64 `form:"heightUnits" json:"heightUnits" validate:"omitempty,gte=0"`

	FileName string `form:"-" json:"-"`
	Data     []byte `form:"-" json:"-"`
	OwnerID  string `form:"-" json:"-"`
}

// UpdateAssetRequest is the owner-checked patch. Only name and
// description are representable; anything else a client sends is dropped
// during binding and never reaches the record.
type UpdateAssetRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// AssetListFilter narrows List to a single owner's records.
type AssetListFilter struct {
	OwnerID string `form:"ownerId" json:"ownerId"`
}

// IngestAssetResponse is the minimal creation receipt.
type IngestAssetResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	FileURL string `json:"fileUrl"`
}

// AssetResponse is the presentation shape: owner resolved to a display
// name, storage id withheld.
type AssetResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	FileURL       string            `json:"fileUrl"`
	UploaderName  string            `json:"uploaderName"`
	VertexCount   int64             `json:"vertexCount"`
	FileSizeBytes int64             `json:"fileSizeBytes"`
	AssetType     models.AssetType  `json:"assetType"`
	ParcelType    models.ParcelType `json:"parcelType"`
	HeightUnits   float64           `json:"heightUnits"`
	CreatedAt     time.Time         `json:"createdAt"`
}
