package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/server/services"
	"github.com/gin-gonic/gin"
)

type favoriteResponse struct {
	Favorited bool `json:"favorited"`
}

func (h *handlers) generateUploadURL(c *gin.Context) {
	ticket, err := h.uploads.GenerateUploadURL(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *handlers) createFile(c *gin.Context) {
	if !identityFrom(c).Authenticated {
		h.fail(c, common.ErrAuthenticationRequired)
		return
	}

	var in services.CreateFileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}

	file, err := h.files.CreateFile(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *handlers) getFiles(c *gin.Context) {
	in := services.GetFilesInput{OrgID: c.Param("orgId")}

	if q, ok := c.GetQuery("query"); ok {
		in.Query = &q
	}
	if v, ok := c.GetQuery("favorites"); ok {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: favorites must be a boolean", common.ErrValidation))
			return
		}
		in.Favorites = fav
	}

	files, err := h.files.GetFiles(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *handlers) getFilesWithURLs(c *gin.Context) {
	files, err := h.files.GetFilesWithURLs(c.Request.Context(), identityFrom(c), c.Param("orgId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *handlers) deleteFile(c *gin.Context) {
	if err := h.files.DeleteFile(c.Request.Context(), identityFrom(c), c.Param("fileId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) toggleFavorite(c *gin.Context) {
	favorited, err := h.files.ToggleFavorite(c.Request.Context(), identityFrom(c), c.Param("fileId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, favoriteResponse{Favorited: favorited})
}
