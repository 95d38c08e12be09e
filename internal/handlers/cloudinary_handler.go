package handlers

import (
	"net/http"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-gonic/gin"
)

// UploadImage proxies an event image to Cloudinary and returns its secure URL.
func UploadImage(cld *cloudinary.Cloudinary) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("no file provided"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("could not read file"))
			return
		}
		defer file.Close()

		url, err := helpers.UploadImage(c.Request.Context(), cld, file)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to upload image"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// DeleteImage removes a previously uploaded image given its delivery URL.
func DeleteImage(cld *cloudinary.Cloudinary) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentClaims(c); !ok {
			return
		}

		var payload struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid URL"))
			return
		}

		if err := helpers.DeleteImage(c.Request.Context(), cld, payload.URL); err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to delete image"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
