package llm

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedImage is returned for attachments that are not png, jpeg,
// gif or webp.
var ErrUnsupportedImage = errors.New("unsupported image type")

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ParseDataURL decodes a base64 "data:<mime>;base64,<payload>" URL.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("data URL has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Image{}, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode data URL: %w", err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return newImage(mime, data)
}

// LoadImage reads an image file, or decodes src when it is a data URL.
func LoadImage(src string) (Image, error) {
	if strings.HasPrefix(src, "data:") {
		return ParseDataURL(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	img, err := newImage(http.DetectContentType(data), data)
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", filepath.Base(src), err)
	}
	return img, nil
}

// DataURL encodes the image as a base64 data URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func newImage(mime string, data []byte) (Image, error) {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if !supportedImageTypes[mime] {
		return Image{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, mime)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("empty image")
	}
	return Image{MIMEType: mime, Data: data}, nil
}
