package models

// AssetType classifies what a scene represents on a parcel.
type AssetType string

const (
	AssetTypeStructure AssetType = "structure"
	AssetTypeProp      AssetType = "prop"
	AssetTypeOther     AssetType = "other"
)

// ParcelType is the footprint of a structure asset. Meaningful only when
// AssetType is "structure"; everything else carries "none".
type ParcelType string

const (
	ParcelTypeSingle      ParcelType = "single"
	ParcelTypeDouble      ParcelType = "double"
	ParcelTypeBlock       ParcelType = "block"
	ParcelTypeDoubleBlock ParcelType = "double-block"
	ParcelTypeSuperBlock  ParcelType = "super-block"
	ParcelTypeNone        ParcelType = "none"
)

// Asset is the catalog record for one uploaded scene container.
//
// VertexCount and FileSizeBytes are derived at ingestion time and never
// accepted from clients afterwards. StorageID addresses the blob for
// deletion and stays out of every client-facing payload.
type Asset struct {
	BaseModel
	Name          string     `gorm:"not null" json:"name"`
	Description   string     `gorm:"default:''" json:"description"`
	FileURL       string     `gorm:"not null" json:"fileUrl"`
	StorageID     string     `gorm:"not null" json:"-"`
	OwnerID       string     `gorm:"not null;index" json:"ownerId"`
	VertexCount   int64      `gorm:"not null;default:0" json:"vertexCount"`
	FileSizeBytes int64      `gorm:"not null;default:0" json:"fileSizeBytes"`
	AssetType     AssetType  `gorm:"type:varchar(20);not null;index;default:'other'" json:"assetType"`
	ParcelType    ParcelType `gorm:"type:varchar(20);not null;index;default:'none'" json:"parcelType"`
	HeightUnits   float64    `gorm:"not null;default:0" json:"heightUnits"`
}

// ValidAssetType reports whether t is a member of the enum.
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetTypeStructure, AssetTypeProp, AssetTypeOther:
		return true
	}
	return false
}

// ValidParcelType reports whether t is a member of the enum.
func ValidParcelType(t ParcelType) bool {
	switch t {
	case ParcelTypeSingle, ParcelTypeDouble, ParcelTypeBlock,
		ParcelTypeDoubleBlock, ParcelTypeSuperBlock, ParcelTypeNone:
		return true
	}
	return false
}
