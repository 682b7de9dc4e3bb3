package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visionServiceFor(url string) *VisionService {
	return &VisionService{
		apiKey:      "test-key",
		baseURL:     url,
		uploadModel: "upload-model",
		cameraModel: "camera-model",
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestModelFor(t *testing.T) {
	svc := visionServiceFor("http://unused")
	assert.Equal(t, "upload-model", svc.ModelFor(SourceUpload))
	assert.Equal(t, "camera-model", svc.ModelFor(SourceCamera))
	// unknown sources fall back to the upload model
	assert.Equal(t, "upload-model", svc.ModelFor("something-else"))
}

func TestComplete_MissingKey(t *testing.T) {
	svc := visionServiceFor("http://unused")
	svc.apiKey = ""
	_, err := svc.Complete(context.Background(), "m", "data:image/png;base64,AA==")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestComplete(t *testing.T) {
	t.Run("returns the completion text", func(t *testing.T) {
		var got chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
		}))
		defer srv.Close()

		svc := visionServiceFor(srv.URL)
		out, err := svc.Complete(context.Background(), "camera-model", "data:image/png;base64,AA==")
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, out)

		assert.Equal(t, "camera-model", got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "user", got.Messages[1].Role)
	})

	t.Run("non-200 surfaces the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := visionServiceFor(srv.URL).Complete(context.Background(), "m", "data:image/png;base64,AA==")
		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusTooManyRequests, terr.Status)
		assert.Contains(t, terr.Body, "rate limited")
	})

	t.Run("unreachable host is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := visionServiceFor(srv.URL).Complete(context.Background(), "m", "data:image/png;base64,AA==")
		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.Error(t, terr.Unwrap())
	})

	t.Run("empty choices is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := visionServiceFor(srv.URL).Complete(context.Background(), "m", "data:image/png;base64,AA==")
		var merr *MalformedResponseError
		assert.ErrorAs(t, err, &merr)
	})
}
