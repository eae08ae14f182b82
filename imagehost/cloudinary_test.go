package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	// Reference value from Cloudinary's signing documentation.
	got := Sign(map[string]string{
		"timestamp": "1315060510",
		"public_id": "sample_image",
		"eager":     "w_400,h_300,c_pad|w_260,h_200,c_crop",
	}, "abcd")
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", got)

	// Empty values are left out of the signed string.
	assert.Equal(t,
		Sign(map[string]string{"timestamp": "1"}, "s"),
		Sign(map[string]string{"timestamp": "1", "public_id": ""}, "s"))
}

func TestUpload(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo-cloud/auto/upload", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.example.com/trade-journal/shot.png",
			"public_id":  "trade-journal/shot",
		})
	}))
	defer server.Close()

	u := New(Config{BaseURL: server.URL, CloudName: "demo-cloud", APIKey: "key", APISecret: "secret"})
	u.now = func() time.Time { return time.Unix(1700000000, 0) }

	url, err := u.Upload(context.Background(), "data:image/png;base64,iVBORw0KGgo=", "shot")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/trade-journal/shot.png", url)

	assert.Equal(t, "trade-journal", form["folder"])
	assert.Equal(t, "shot", form["public_id"])
	assert.Equal(t, "1700000000", form["timestamp"])
	assert.Equal(t, "key", form["api_key"])
	assert.Equal(t, Sign(map[string]string{
		"folder": "trade-journal", "public_id": "shot", "timestamp": "1700000000",
	}, "secret"), form["signature"])
}

func TestUploadErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		_, err := New(Config{CloudName: "x"}).Upload(context.Background(), "data:", "f")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("host rejects", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "Invalid image file"}}`))
		}))
		defer server.Close()

		u := New(Config{BaseURL: server.URL, CloudName: "c", APIKey: "k", APISecret: "s"})
		_, err := u.Upload(context.Background(), "data:image/png;base64,AAAA", "f")

		var upErr *UploadError
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, http.StatusBadRequest, upErr.Status)
		assert.Equal(t, "Invalid image file", upErr.Message)
	})

	t.Run("empty image", func(t *testing.T) {
		u := New(Config{CloudName: "c", APIKey: "k", APISecret: "s"})
		_, err := u.Upload(context.Background(), " ", "f")
		var upErr *UploadError
		assert.ErrorAs(t, err, &upErr)
	})
}
