package storage

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// DiskStorage keeps media files under a local directory (MEDIA_DIR)
type DiskStorage struct {
	// BasePath is a directory that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(basePath string) *DiskStorage {
	return &DiskStorage{
		BasePath: basePath,
		dirs:     make(map[string]bool, 10),
	}
}

func (s *DiskStorage) ensureDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if s.dirs[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

// fullPath maps a media path to a file name inside BasePath
func (s *DiskStorage) fullPath(path string) (string, error) {
	cleaned, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(cleaned)), nil
}

// Save writes into a temporary file first, readers never see a half written image
func (s *DiskStorage) Save(path string, reader io.Reader) (written int64, err error) {
	fileName, err := s.fullPath(path)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(fileName)
	if err = s.ensureDir(dir); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if written, err = io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	return written, os.Rename(tmp.Name(), fileName)
}

func (s *DiskStorage) Load(path string, writer io.Writer) (int64, error) {
	fileName, err := s.fullPath(path)
	if err != nil {
		return 0, err
	}
	file, err := os.Open(fileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return io.Copy(writer, file)
}

func (s *DiskStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	fileName, err := s.fullPath(path)
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	info, err := os.Stat(fileName)
	if err != nil || info.IsDir() {
		http.NotFound(writer, request)
		return
	}
	http.ServeFile(writer, request, fileName)
}

func (s *DiskStorage) Delete(path string) error {
	fileName, err := s.fullPath(path)
	if err != nil {
		return err
	}
	return os.Remove(fileName)
}
