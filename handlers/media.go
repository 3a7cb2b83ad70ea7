package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/ioann7/api-yatube/config"
	"github.com/ioann7/api-yatube/storage"
	"github.com/ioann7/api-yatube/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errBadImage = errors.New("upload a valid image: the file you uploaded was either not an image or a corrupted image")

// saveImage stores a base64 data URI as a JPEG under posts/ and returns its media path
func saveImage(dataURI string) (string, error) {
	_, data, err := utils.DecodeDataURI(dataURI)
	if err != nil {
		return "", errBadImage
	}
	buf := bytes.Buffer{}
	if _, err = utils.NormalizeImage(uint(config.IMAGE_MAX_SIZE), bytes.NewReader(data), &buf); err != nil {
		return "", errBadImage
	}
	path := storage.StorageLocationPosts + "/" + uuid.NewString() + ".jpg"
	if _, err = storage.Default().Save(path, &buf); err != nil {
		return "", err
	}
	return path, nil
}

func deleteImage(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := storage.Default().Delete(*path); err != nil {
		logrus.Warnf("Could not delete image %s: %v", *path, err)
	}
}

func imageURL(path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	url := storage.URL(*path)
	return &url
}

func MediaServe(c *gin.Context) {
	path, err := storage.CleanPath(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	storage.Default().Serve(path, c.Request, c.Writer)
}
