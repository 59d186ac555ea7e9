package handler

import (
	"errors"
	"log"
	"mime"
	"path/filepath"

	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ServeFileHandler streams a stored attachment. This endpoint backs the URLs
// written into article file references, so they stay valid for as long as the
// blob exists.
func ServeFileHandler(c *gin.Context, blobs *services.BlobStore) {
	articleID := c.Param("id")
	fileName := c.Param("name")

	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)

	path := services.AttachmentPath(articleID, fileName)
	if _, err := blobs.Download(path, c.Writer); err != nil {
		if errors.Is(err, services.ErrBlobNotFound) {
			utils.NotFound(c, "File not found")
			return
		}
		// The stream may be partially written already
		log.Printf("Failed to stream %s: %v", path, err)
		utils.TrackError("storage", "blob_stream_failed")
		c.Abort()
	}
}
