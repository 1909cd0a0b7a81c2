package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var path, chat, text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseForm()
		chat = r.PostForm.Get("chat_id")
		text = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier("token123", "-100").WithBaseURL(srv.URL)
	require.NoError(t, n.PublishDigest(context.Background(), "1 new draft(s) ready for review"))

	assert.Equal(t, "/bottoken123/sendMessage", path)
	assert.Equal(t, "-100", chat)
	assert.Equal(t, "1 new draft(s) ready for review", text)
}

func TestPublishDigestTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	var text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		text = r.PostForm.Get("text")
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier("t", "c").WithBaseURL(srv.URL)
	require.NoError(t, n.PublishDigest(context.Background(), strings.Repeat("✨", 5000)))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(text))
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	require.Error(t, NewNotifier("", "").PublishDigest(context.Background(), "x"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	err := NewNotifier("t", "c").WithBaseURL(srv.URL).PublishDigest(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
