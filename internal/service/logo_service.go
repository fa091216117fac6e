package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agencydesk/internal/config"
	"agencydesk/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultLogoUploadDir       = "/tmp/agencydesk/uploads/logos"
	DefaultLogoMaxUploadSizeMB = 5
	LogoMaxSize                = 512
	LogoWebPQuality            = 80
)

type LogoService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewLogoService(cfg *config.Config) *LogoService {
	uploadDir := DefaultLogoUploadDir
	maxUploadSizeMB := DefaultLogoMaxUploadSizeMB

	if cfg != nil {
		if cfg.LogoUploadDir != "" {
			uploadDir = cfg.LogoUploadDir
		}
		if cfg.LogoMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.LogoMaxUploadSizeMB
		}
	}

	return &LogoService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Store validates and normalizes an uploaded logo, writing it to the upload
// dir as webp under a random name. The returned path is relative to the
// upload dir and is what gets persisted on the agency.
func (s *LogoService) Store(content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedLogoMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	normalized := resizeToFit(decoded, LogoMaxSize, LogoMaxSize)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, normalized, &webp.Options{Quality: LogoWebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), buf.Bytes(), 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return name, nil
}

// Remove deletes a stored logo file. A missing file is not an error.
func (s *LogoService) Remove(path string) error {
	if path == "" {
		return nil
	}
	// Stored paths are bare filenames; reject anything that walks out.
	if strings.Contains(path, "/") || strings.Contains(path, "..") {
		return models.NewValidationError("Invalid logo path")
	}
	if err := os.Remove(filepath.Join(s.uploadDir, path)); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedLogoMIME(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
