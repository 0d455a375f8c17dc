package handlers

import (
	"io"
	"net/http"

	"modelhub_backend/internal/middleware"
	"modelhub_backend/internal/services"
	"modelhub_backend/internal/services/dto"
	"modelhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================
// ASSET HANDLER
// ============================================

type AssetHandler struct {
	*BaseHandler
	assetService services.AssetService
	maxFileSize  int64
}

func NewAssetHandler(base *BaseHandler, assetService services.AssetService, maxFileSize int64) *AssetHandler {
	return &AssetHandler{
		BaseHandler:  base,
		assetService: assetService,
		maxFileSize:  maxFileSize,
	}
}

func (h *AssetHandler) RegisterRoutes(r *gin.RouterGroup) {
	assets := r.Group("/assets")
	{
		// Public catalog reads
		assets.GET("", h.ListAssets)
		assets.GET("/:assetId", h.GetAsset)

		// Owner-scoped mutations
		protected := assets.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("", middleware.BodySizeLimit(h.maxFileSize+1<<20), h.IngestAsset)
			protected.PATCH("/:assetId", h.UpdateAsset)
			protected.DELETE("/:assetId", h.DeleteAsset)
		}
	}
}

// IngestAsset - accepts the multipart container upload plus metadata and
// runs the ingestion pipeline.
func (h *AssetHandler) IngestAsset(c *gin.Context) {
	ownerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.IngestAssetRequest
	if !h.BindAndValidateForm(c, &req) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrEmptyFile)
		return
	}
	if fileHeader.Size > h.maxFileSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	req.OwnerID = ownerID
	req.FileName = fileHeader.Filename
	req.Data = data

	asset, err := h.assetService.Ingest(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Asset uploaded successfully",
		"asset": dto.IngestAssetResponse{
			ID:      asset.ID,
			Name:    asset.Name,
			FileURL: asset.FileURL,
		},
	})
}

// ListAssets - full catalog, newest first, optionally narrowed to one
// owner via ?ownerId=.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	filter := dto.AssetListFilter{OwnerID: c.Query("ownerId")}

	assets, err := h.assetService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.Get(c.Request.Context(), c.Param("assetId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	ownerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var patch dto.UpdateAssetRequest
	if !h.BindAndValidateJSON(c, &patch) {
		return
	}

	asset, err := h.assetService.Update(c.Request.Context(), c.Param("assetId"), ownerID, &patch)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	ownerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.assetService.Delete(c.Request.Context(), c.Param("assetId"), ownerID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
