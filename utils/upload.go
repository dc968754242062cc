package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"gymdesk-backend/models"

	"github.com/disintegration/imaging"
)

const (
	MaxProfileImageSize = 5 << 20
	profileImageEdge    = 512
)

var ErrUnsupportedImage = models.NewRuleError("unsupported_image", "profile picture must be a JPEG or PNG image up to 5MB")

// SaveProfileImage decodes the uploaded image, fits it into 512x512 and
// writes it as dir/profiles/<name>.jpg. The returned path is relative to dir.
func SaveProfileImage(fh *multipart.FileHeader, dir, name string) (string, error) {
	if fh.Size > MaxProfileImageSize {
		return "", ErrUnsupportedImage
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", ErrUnsupportedImage
	}
	switch http.DetectContentType(head[:n]) {
	case "image/jpeg", "image/png":
	default:
		return "", ErrUnsupportedImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedImage
	}
	img = imaging.Fit(img, profileImageEdge, profileImageEdge, imaging.Lanczos)

	target := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	rel := filepath.Join("profiles", name+".jpg")
	if err := imaging.Save(img, filepath.Join(dir, rel), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}
	return filepath.ToSlash(rel), nil
}
