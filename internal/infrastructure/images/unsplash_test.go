package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
)

const photosJSON = `{"results":[
	{"id":"p1","alt_description":"serum bottle","urls":{"regular":"https://img/1","small":"https://img/1s"},
	 "links":{"download_location":"%[1]s/photos/p1/download"},
	 "user":{"name":"Ana <B>","username":"ana","links":{"html":"https://unsplash.com/@ana"}}},
	{"id":"p2","alt_description":"","urls":{"regular":"https://img/2","small":"https://img/2s"},
	 "links":{"download_location":"%[1]s/photos/p2/download"},
	 "user":{"name":"Bo","username":"bo","links":{"html":"https://unsplash.com/@bo"}}}
]}`

func first(int) int { return 0 }

func TestTopicWords(t *testing.T) {
	t.Parallel()

	// hyphens are dropped, not split
	assert.Equal(t, "glassskin step routine", topicWords("Glass-Skin 10-Step Routine for Summer"))
	assert.Equal(t, "retinol", topicWords("Is retinol OK?"))
	assert.Equal(t, "", topicWords("a b c"))
}

func TestSearchImageBuildsAttribution(t *testing.T) {
	t.Parallel()

	var query string
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		query = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(fmt.Sprintf(photosJSON, srvURL)))
	}))
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	u := NewUnsplash(Options{AccessKey: "key", AppName: "kyndall_blog", BaseURL: srv.URL, HTTPClient: srv.Client(), Intn: first}, nil)
	img, err := u.SearchImage(context.Background(), "Retinol serum guide", "skincare")
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, "retinol serum guide skincare routine", query)
	assert.Equal(t, "https://img/1", img.URL)
	assert.Equal(t, "serum bottle", img.Alt)
	assert.Equal(t, "https://unsplash.com/@ana?utm_source=kyndall_blog&utm_medium=referral", img.Credit.PhotographerURL)
	assert.Equal(t, "https://unsplash.com?utm_source=kyndall_blog&utm_medium=referral", img.Credit.SourceURL)
	assert.Contains(t, img.AttributionHTML, "Ana &lt;B&gt;")
	assert.Equal(t, "Photo by Ana <B> on Unsplash", img.AttributionText)
	assert.Equal(t, srv.URL+"/photos/p1/download", img.DownloadLocation)
}

func TestSearchImageFallsBackToCategoryTerm(t *testing.T) {
	t.Parallel()

	var calls []string
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		calls = append(calls, q)
		if len(calls) == 1 {
			_, _ = w.Write([]byte(`{"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(fmt.Sprintf(photosJSON, srvURL)))
	}))
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	u := NewUnsplash(Options{AccessKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client(), Intn: first}, nil)
	img, err := u.SearchImage(context.Background(), "Nail wraps", "unknown")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, []string{"nail wraps self care", "self care"}, calls)
}

func TestSearchImageWithoutKeyOrResults(t *testing.T) {
	t.Parallel()

	img, err := NewUnsplash(Options{}, nil).SearchImage(context.Background(), "x", "makeup")
	require.NoError(t, err)
	assert.Nil(t, img)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(srv.Close)
	img, err = NewUnsplash(Options{AccessKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client(), Intn: first}, nil).
		SearchImage(context.Background(), "glass skin", "skincare")
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestSearchImageSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := NewUnsplash(Options{AccessKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client(), Intn: first}, nil).
		SearchImage(context.Background(), "glass skin", "skincare")
	require.Error(t, err)
}

func TestTrackDownload(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
	}))
	t.Cleanup(srv.Close)

	u := NewUnsplash(Options{AccessKey: "key", HTTPClient: srv.Client()}, nil)
	require.NoError(t, u.TrackDownload(context.Background(), &domain.FeaturedImage{DownloadLocation: srv.URL + "/photos/p1/download"}))
	require.NoError(t, u.TrackDownload(context.Background(), &domain.FeaturedImage{}))
	require.NoError(t, u.TrackDownload(context.Background(), nil))
	assert.EqualValues(t, 1, hits.Load())
}
