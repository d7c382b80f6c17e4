// Package upload validates and stores image attachments. Files are renamed
// to generated uuids so the client-supplied filename never reaches the
// filesystem, closing path-traversal and overwrite attacks.
package upload

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
)

// Upload constraints.
const (
	MaxFileSize = 5 << 20 // 5 MiB per file
	MaxFiles    = 10      // per request
)

// URLPrefix is the public path under which stored files are served back.
const URLPrefix = "/uploads"

// allowedTypes maps accepted sniffed MIME types to their storage extension.
// The extension comes from the detected type, never the client filename.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Validator checks and persists uploaded images.
type Validator struct {
	dir string
}

// NewValidator creates a validator storing files under dir, creating the
// directory if needed.
func NewValidator(dir string) (*Validator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Validator{dir: dir}, nil
}

// SaveAll validates every file, then persists them and returns their public
// paths. A single violating file rejects the whole batch with the specific
// violated constraint, before anything is written.
func (v *Validator) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, apierrors.NewHTTPError(http.StatusBadRequest, "invalid upload",
			fmt.Sprintf("too many files: %d (max %d)", len(files), MaxFiles))
	}

	exts := make([]string, len(files))
	for i, fh := range files {
		ext, err := v.check(fh)
		if err != nil {
			return nil, err
		}
		exts[i] = ext
	}

	urls := make([]string, 0, len(files))
	for i, fh := range files {
		name := uuid.New().String() + exts[i]
		if err := v.store(fh, name); err != nil {
			v.Remove(urls)
			return nil, fmt.Errorf("store upload: %w", err)
		}
		urls = append(urls, URLPrefix+"/"+name)
	}
	return urls, nil
}

func (v *Validator) check(fh *multipart.FileHeader) (ext string, err error) {
	if fh.Size > MaxFileSize {
		return "", apierrors.NewHTTPError(http.StatusBadRequest, "invalid upload",
			fmt.Sprintf("file %q exceeds the %d MiB size limit", fh.Filename, MaxFileSize>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	// Sniff the actual content; the client's filename and declared
	// Content-Type are untrusted.
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	ext, ok := allowedTypes[mtype.String()]
	if !ok {
		return "", apierrors.NewHTTPError(http.StatusBadRequest, "invalid upload",
			fmt.Sprintf("file %q has unsupported type %s (allowed: jpeg, png, webp, gif)", fh.Filename, mtype.String()))
	}
	return ext, nil
}

func (v *Validator) store(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(v.dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Remove best-effort deletes stored files by their public paths. Failures
// are logged, never surfaced: the caller's primary operation already
// succeeded.
func (v *Validator) Remove(urls []string) {
	for _, u := range urls {
		name := path.Base(u)
		if name == "." || name == "/" {
			continue
		}
		if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !os.IsNotExist(err) {
			log.Printf("remove upload %s: %v", name, err)
		}
	}
}

// Dir returns the storage directory, for static serving.
func (v *Validator) Dir() string {
	return v.dir
}
