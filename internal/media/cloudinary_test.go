package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploader(serverURL string) *CloudinaryUploader {
	u := NewCloudinaryUploader("demo", "key", "secret", "messego")
	u.baseURL = serverURL
	return u
}

func TestUploadReturnsURLAndPublicID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.NotEmpty(t, r.FormValue("signature"))
		assert.Contains(t, r.FormValue("public_id"), "messego/")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://cdn.example/img.jpg","public_id":"messego/abc"}`))
	}))
	defer srv.Close()

	up, err := newTestUploader(srv.URL).Upload(context.Background(), "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/img.jpg", up.URL)
	assert.Equal(t, "messego/abc", up.PublicID)
}

func TestUploadAPIErrorWrapsErrUploadFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	}))
	defer srv.Close()

	_, err := newTestUploader(srv.URL).Upload(context.Background(), "aGVsbG8=")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "Invalid Signature")
}

func TestUploadNon200StatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestUploader(srv.URL).Upload(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadUnconfigured(t *testing.T) {
	u := NewCloudinaryUploader("", "", "", "")
	_, err := u.Upload(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestDestroyAcceptsOkAndNotFound(t *testing.T) {
	for _, result := range []string{"ok", "not found"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "/demo/image/destroy", r.URL.Path)
			assert.Equal(t, "messego/abc", r.FormValue("public_id"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"result":"` + result + `"}`))
		}))

		err := newTestUploader(srv.URL).Destroy(context.Background(), "messego/abc")
		assert.NoError(t, err, "result %q", result)
		srv.Close()
	}
}

func TestDestroyUnexpectedResultFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	err := newTestUploader(srv.URL).Destroy(context.Background(), "messego/abc")
	assert.Error(t, err)
}
