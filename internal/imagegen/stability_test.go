package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStabilitySynthesize(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "a leaf", r.FormValue("prompt"))
		assert.Equal(t, "png", r.FormValue("output_format"))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer ts.Close()

	c := NewStabilityClient(StabilityConfig{APIKey: "sk-test", Endpoint: ts.URL})
	img, err := c.Synthesize(context.Background(), "a leaf")
	require.NoError(t, err)

	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "data:image/png;base64,iVBORw==", img.DataURI())
}

func TestStabilityNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"errors":["insufficient credits"]}`))
	}))
	defer ts.Close()

	c := NewStabilityClient(StabilityConfig{APIKey: "sk-test", Endpoint: ts.URL})
	_, err := c.Synthesize(context.Background(), "a leaf")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusPaymentRequired, statusErr.Status)
	assert.Contains(t, statusErr.Body, "insufficient credits")
}

func TestStabilityWithoutKeyMakesNoRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	c := NewStabilityClient(StabilityConfig{Endpoint: ts.URL})
	_, err := c.Synthesize(context.Background(), "a leaf")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestImageMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageMIME("image/jpeg"))
	assert.Equal(t, "image/webp", imageMIME("image/webp; charset=binary"))
	assert.Equal(t, "image/png", imageMIME("application/json"))
	assert.Equal(t, "image/png", imageMIME(""))
}

func TestImagenWithoutKey(t *testing.T) {
	c, err := NewImagenClient(context.Background(), ImagenConfig{})
	require.NoError(t, err)

	_, err = c.Synthesize(context.Background(), "a leaf")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
