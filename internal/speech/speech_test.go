package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "note.wav", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"text": "remove vehicle V001"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	text, err := client.Transcribe(context.Background(), "note.wav", []byte("fake-audio"))
	require.NoError(t, err)
	assert.Equal(t, "remove vehicle V001", text)
}

func TestClient_TranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "")
	_, err := client.Transcribe(context.Background(), "note.wav", []byte("fake-audio"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/speech", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "nova", payload["voice"])
		assert.Equal(t, "Done. 1 row(s) were updated.", payload["input"])

		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "nova")
	audio, err := client.Synthesize(context.Background(), "Done. 1 row(s) were updated.")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()

	_, err := Disabled{}.Transcribe(ctx, "x.wav", nil)
	assert.Error(t, err)

	_, err = Disabled{}.Synthesize(ctx, "hello")
	assert.Error(t, err)
}
