package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
)

var ErrBadDataURI = errors.New("expected a base64 data URI, e.g. data:image/png;base64,...")

// Truncate returns at most n characters (not bytes) of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// DecodeDataURI splits "data:<mime>;base64,<payload>" into mime type and decoded bytes
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, ErrBadDataURI
	}
	header, payload, found := strings.Cut(uri[len("data:"):], ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrBadDataURI
	}
	mimeType = strings.TrimSuffix(header, ";base64")
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrBadDataURI
	}
	return mimeType, data, nil
}

type ImageConverted struct {
	Size int64
	NewX uint16
	NewY uint16
	OldX uint16
	OldY uint16
}

// NormalizeImage re-encodes any supported image as JPEG, downscaling it so that
// neither side is longer than maxSize (0 - keep dimensions)
func NormalizeImage(maxSize uint, reader io.Reader, writer io.Writer) (result ImageConverted, err error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	imageRect := img.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	newImage := img
	if maxSize > 0 && (uint(imageRect.X) > maxSize || uint(imageRect.Y) > maxSize) {
		newImage = resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
	}
	var newBuf bytes.Buffer
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect = newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	result.Size, err = io.Copy(writer, &newBuf)
	return
}
