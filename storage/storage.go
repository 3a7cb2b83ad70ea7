package storage

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/ioann7/api-yatube/config"

	"github.com/sirupsen/logrus"
)

const (
	StorageLocationPosts = "posts"
)

var ErrInvalidPath = errors.New("invalid media path")

// StorageAPI is what the handlers need from a media backend
type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
}

var (
	current      StorageAPI
	currentMutex sync.RWMutex
)

// Init selects S3 when S3_BUCKET is configured and the local MEDIA_DIR otherwise
func Init() {
	if config.S3_BUCKET != "" {
		bucket := BucketFromConfig()
		logrus.Infof("Media storage: S3 bucket %s", bucket.Name)
		Use(NewS3Storage(&bucket))
		return
	}
	logrus.Infof("Media storage: %s", config.MEDIA_DIR)
	Use(NewDiskStorage(config.MEDIA_DIR))
}

func Use(s StorageAPI) {
	currentMutex.Lock()
	current = s
	currentMutex.Unlock()
}

func Default() StorageAPI {
	currentMutex.RLock()
	defer currentMutex.RUnlock()
	if current == nil {
		panic("no storage available")
	}
	return current
}

// CleanPath rejects absolute paths and anything escaping the media root
func CleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// URL is the public address of a stored file
func URL(p string) string {
	return strings.TrimSuffix(config.MEDIA_URL, "/") + "/" + strings.TrimPrefix(p, "/")
}
