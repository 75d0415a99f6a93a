package channel_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
)

func testXConfig(base string) config.XConfig {
	return config.XConfig{
		APIKey:            "consumer-key",
		APISecret:         "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-secret",
		APIBaseURL:        base,
		UploadBaseURL:     base,
	}
}

type xServer struct {
	*httptest.Server
	mu          sync.Mutex
	uploads     [][]byte
	tweets      []map[string]any
	tweetStatus int
}

func newXServer(t *testing.T) *xServer {
	t.Helper()

	xs := &xServer{tweetStatus: http.StatusCreated}
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		file, _, err := r.FormFile("media")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		xs.mu.Lock()
		xs.uploads = append(xs.uploads, data)
		xs.mu.Unlock()
		_, _ = w.Write([]byte(`{"media_id":1,"media_id_string":"1"}`))
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.Contains(t, auth, `oauth_consumer_key="consumer-key"`)
		assert.Contains(t, auth, `oauth_token="access-token"`)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		xs.mu.Lock()
		xs.tweets = append(xs.tweets, body)
		status := xs.tweetStatus
		xs.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":{"id":"99","text":"ok"}}`))
	})
	xs.Server = httptest.NewServer(mux)
	t.Cleanup(xs.Close)
	return xs
}

func TestXSender_TextOnly(t *testing.T) {
	t.Parallel()

	srv := newXServer(t)
	s := channel.NewXSender(testXConfig(srv.URL), srv.Client(), nil)

	require.True(t, s.Send(context.Background(), domain.NewPost("Bitcoin up", nil)))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Empty(t, srv.uploads)
	require.Len(t, srv.tweets, 1)
	assert.Equal(t, "Bitcoin up"+domain.Firm, srv.tweets[0]["text"])
	assert.NotContains(t, srv.tweets[0], "media")
}

func TestXSender_WithImage(t *testing.T) {
	t.Parallel()

	srv := newXServer(t)
	s := channel.NewXSender(testXConfig(srv.URL), srv.Client(), nil)

	require.True(t, s.Send(context.Background(), domain.NewPost("Bitcoin up", []byte("img"))))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.uploads, 1)
	assert.Equal(t, []byte("img"), srv.uploads[0])
	require.Len(t, srv.tweets, 1)
	assert.Equal(t, map[string]any{"media_ids": []any{"1"}}, srv.tweets[0]["media"])
}

func TestXSender_FailureReturnsFalse(t *testing.T) {
	t.Parallel()

	srv := newXServer(t)
	srv.mu.Lock()
	srv.tweetStatus = http.StatusForbidden
	srv.mu.Unlock()
	s := channel.NewXSender(testXConfig(srv.URL), srv.Client(), nil)

	assert.False(t, s.Send(context.Background(), domain.NewPost("dup", nil)))
}

func TestXSender_Limits(t *testing.T) {
	t.Parallel()

	s := channel.NewXSender(testXConfig(""), nil, nil)

	assert.Equal(t, domain.ChannelX, s.Channel())
	assert.Equal(t, 280, s.MaxMessageLength())
	assert.False(t, s.RequiresImage())
}
