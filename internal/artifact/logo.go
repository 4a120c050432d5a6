// Package artifact moves generated logo images out of history records and
// into object storage.
package artifact

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/venturemind/venturemind-backend/internal/models"
)

const refScheme = "s3://"

// ObjectStore is the subset of S3Store the archiver needs.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, content []byte, contentType string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// LogoArchiver rewrites data-URI logos to s3:// references on save and back
// to presigned URLs on read. A nil *LogoArchiver leaves packs untouched.
type LogoArchiver struct {
	store ObjectStore
}

func NewLogoArchiver(store ObjectStore) *LogoArchiver {
	return &LogoArchiver{store: store}
}

// Archive uploads pack's logo when it is an inline data URI and replaces it
// with an object reference. Other logo values are left alone.
func (a *LogoArchiver) Archive(ctx context.Context, owner string, pack *models.StartupPack) error {
	if a == nil || a.store == nil || pack == nil || pack.Brand.LogoURL == nil {
		return nil
	}
	data, mimeType, ok := ParseDataURI(*pack.Brand.LogoURL)
	if !ok {
		return nil
	}

	key := fmt.Sprintf("logos/%s/%s%s", owner, uuid.NewString(), extension(mimeType))
	if err := a.store.Put(ctx, key, data, mimeType); err != nil {
		return err
	}
	ref := refScheme + a.store.Bucket() + "/" + key
	pack.Brand.LogoURL = &ref
	slog.Info("logo archived", "component", "artifact", "key", key, "bytes", len(data))
	return nil
}

// Resolve swaps an s3:// logo reference for a presigned URL. A reference that
// cannot be resolved is dropped so clients never see an unusable URL.
func (a *LogoArchiver) Resolve(ctx context.Context, pack *models.StartupPack) {
	if pack == nil || pack.Brand.LogoURL == nil {
		return
	}
	bucket, key, ok := ParseRef(*pack.Brand.LogoURL)
	if !ok {
		return
	}
	if a == nil || a.store == nil || bucket != a.store.Bucket() {
		pack.Brand.LogoURL = nil
		return
	}
	u, err := a.store.PresignedURL(ctx, key)
	if err != nil {
		slog.Warn("logo presign failed", "component", "artifact", "key", key, "error", err)
		pack.Brand.LogoURL = nil
		return
	}
	pack.Brand.LogoURL = &u
}

// ParseDataURI decodes a base64 data URI such as data:image/png;base64,....
func ParseDataURI(s string) (data []byte, mimeType string, ok bool) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return nil, "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", false
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 || mimeType == "" {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	return data, mimeType, true
}

// ParseRef splits s3://bucket/key.
func ParseRef(s string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(s, refScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
