package artifact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemind/venturemind-backend/internal/models"
)

type memoryStore struct {
	objects    map[string][]byte
	types      map[string]string
	putErr     error
	presignErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Bucket() string { return "logos-test" }

func (m *memoryStore) Put(_ context.Context, key string, content []byte, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = content
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) PresignedURL(_ context.Context, key string) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://objects.example.com/" + key + "?sig=1", nil
}

func strPtr(s string) *string { return &s }

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		ok     bool
		mime   string
		length int
	}{
		{"png", "data:image/png;base64,iVBORw==", true, "image/png", 4},
		{"not a data uri", "https://example.com/logo.png", false, "", 0},
		{"no base64 marker", "data:image/png,abc", false, "", 0},
		{"no comma", "data:image/png;base64", false, "", 0},
		{"bad payload", "data:image/png;base64,!!!", false, "", 0},
		{"empty payload", "data:image/png;base64,", false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mime, ok := ParseDataURI(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mime, mime)
			assert.Len(t, data, tt.length)
		})
	}
}

func TestParseRef(t *testing.T) {
	bucket, key, ok := ParseRef("s3://logos/a/b.png")
	require.True(t, ok)
	assert.Equal(t, "logos", bucket)
	assert.Equal(t, "a/b.png", key)

	for _, in := range []string{"s3://logos", "s3:///key", "https://x/y", ""} {
		_, _, ok := ParseRef(in)
		assert.False(t, ok, in)
	}
}

func TestArchiveAndResolve(t *testing.T) {
	store := newMemoryStore()
	archiver := NewLogoArchiver(store)
	pack := &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("data:image/png;base64,iVBORw==")}}

	require.NoError(t, archiver.Archive(context.Background(), "user-1", pack))
	require.NotNil(t, pack.Brand.LogoURL)
	ref := *pack.Brand.LogoURL
	assert.True(t, strings.HasPrefix(ref, "s3://logos-test/logos/user-1/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)
	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
		assert.Equal(t, "image/png", store.types[key])
	}

	archiver.Resolve(context.Background(), pack)
	require.NotNil(t, pack.Brand.LogoURL)
	assert.True(t, strings.HasPrefix(*pack.Brand.LogoURL, "https://objects.example.com/logos/user-1/"))
}

func TestArchiveLeavesOtherValues(t *testing.T) {
	store := newMemoryStore()
	archiver := NewLogoArchiver(store)

	noLogo := &models.StartupPack{}
	require.NoError(t, archiver.Archive(context.Background(), "u", noLogo))
	assert.Nil(t, noLogo.Brand.LogoURL)

	remote := &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("https://cdn.example.com/logo.png")}}
	require.NoError(t, archiver.Archive(context.Background(), "u", remote))
	assert.Equal(t, "https://cdn.example.com/logo.png", *remote.Brand.LogoURL)
	assert.Empty(t, store.objects)
}

func TestArchivePutFailureKeepsPack(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("bucket unavailable")
	pack := &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("data:image/png;base64,iVBORw==")}}

	err := NewLogoArchiver(store).Archive(context.Background(), "u", pack)
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Equal(t, "data:image/png;base64,iVBORw==", *pack.Brand.LogoURL)
}

func TestResolveDropsUnusableRefs(t *testing.T) {
	store := newMemoryStore()
	store.presignErr = errors.New("boom")

	pack := &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("s3://logos-test/logos/u/x.png")}}
	NewLogoArchiver(store).Resolve(context.Background(), pack)
	assert.Nil(t, pack.Brand.LogoURL)

	var nilArchiver *LogoArchiver
	pack = &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("s3://logos-test/logos/u/x.png")}}
	nilArchiver.Resolve(context.Background(), pack)
	assert.Nil(t, pack.Brand.LogoURL)

	inline := &models.StartupPack{Brand: models.Brand{LogoURL: strPtr("data:image/png;base64,iVBORw==")}}
	nilArchiver.Resolve(context.Background(), inline)
	assert.NotNil(t, inline.Brand.LogoURL)
}
