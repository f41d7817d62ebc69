// Package photo stores profile photos uploaded at registration.
package photo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/apperr"
)

// MaxBytes limits a single upload.
const MaxBytes = 5 << 20

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// objectName validates the upload and returns a fresh "<uuid><ext>" name and a content type.
func objectName(filename, contentType string, size int) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := allowedExt[ext]
	if !ok {
		return "", "", apperr.ValidationFields("Unsupported photo format",
			map[string]string{"photo": "must be jpg, jpeg, png, gif or webp"})
	}
	if size == 0 {
		return "", "", apperr.ValidationFields("Photo is empty", map[string]string{"photo": "must not be empty"})
	}
	if size > MaxBytes {
		return "", "", apperr.ValidationFields("Photo is too large",
			map[string]string{"photo": fmt.Sprintf("must be at most %d bytes", MaxBytes)})
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime
	}
	return uuid.New().String() + ext, contentType, nil
}

// nameFromURL returns the object name at the end of a URL this store produced
// under prefix.
func nameFromURL(url, prefix string) (string, error) {
	name, ok := strings.CutPrefix(url, prefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("photo %q was not stored here", url)
	}
	return name, nil
}
