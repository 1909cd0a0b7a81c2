package images

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	unsplashHome   = "https://unsplash.com"
	topicWordLimit = 3
	randomTopPicks = 3
)

var categoryTerms = map[string][]string{
	"makeup":    {"makeup tutorial", "cosmetics flatlay", "beauty products", "lipstick aesthetic"},
	"skincare":  {"skincare routine", "skincare products", "face serum", "glowing skin"},
	"nails":     {"nail art", "manicure", "nail polish"},
	"hair":      {"hairstyle", "hair care", "beautiful hair"},
	"fashion":   {"fashion aesthetic", "outfit flatlay", "style"},
	"lifestyle": {"self care", "wellness aesthetic", "lifestyle flatlay"},
	"trending":  {"beauty trends", "viral beauty", "aesthetic flatlay"},
}

var nonLetters = regexp.MustCompile(`[^a-z\s]`)

// Options configures the Unsplash client.
type Options struct {
	AccessKey  string
	AppName    string
	BaseURL    string
	HTTPClient *http.Client
	// Intn picks among equally good results; nil uses math/rand.
	Intn func(n int) int
	// RequestsPerHour matches the API plan; zero means 50 (demo tier).
	RequestsPerHour int
}

// Unsplash implements ports.ImageSearch with attribution as the API
// guidelines require.
type Unsplash struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.ImageSearch = (*Unsplash)(nil)

// NewUnsplash wires the client.
func NewUnsplash(opts Options, logger *slog.Logger) *Unsplash {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.AppName == "" {
		opts.AppName = "blog_engine"
	}
	if opts.Intn == nil {
		opts.Intn = rand.IntN
	}
	if opts.RequestsPerHour <= 0 {
		opts.RequestsPerHour = 50
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Unsplash{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(opts.RequestsPerHour)), 5),
		logger:  logger,
	}
}

// Enabled reports whether an access key is configured.
func (u *Unsplash) Enabled() bool { return u.opts.AccessKey != "" }

// SearchImage looks for a landscape photo matching the topic and a category
// term, then falls back to the category term alone. It returns nil without an
// error when nothing is found or no key is configured.
func (u *Unsplash) SearchImage(ctx context.Context, topic, category string) (*domain.FeaturedImage, error) {
	if !u.Enabled() {
		return nil, nil
	}

	terms, ok := categoryTerms[category]
	if !ok {
		terms = categoryTerms[domain.DefaultCategory]
	}
	term := terms[u.opts.Intn(len(terms))]
	query := strings.TrimSpace(topicWords(topic) + " " + term)

	photos, err := u.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(photos) > 0 {
		pick := photos[u.opts.Intn(min(randomTopPicks, len(photos)))]
		return u.toImage(pick, topic+" - beauty tips"), nil
	}

	u.logger.Debug("no unsplash results, trying category term", "query", query, "term", term)
	photos, err = u.search(ctx, term)
	if err != nil || len(photos) == 0 {
		return nil, err
	}
	return u.toImage(photos[0], "Beauty and skincare tips"), nil
}

// TrackDownload pings the download endpoint for a photo that was used.
func (u *Unsplash) TrackDownload(ctx context.Context, img *domain.FeaturedImage) error {
	if !u.Enabled() || img == nil || img.DownloadLocation == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.DownloadLocation, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.opts.AccessKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("track download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("track download: %s", resp.Status)
	}
	return nil
}

type photo struct {
	ID             string `json:"id"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	Links struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Links    struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

func (u *Unsplash) search(ctx context.Context, query string) ([]photo, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "5")
	params.Set("orientation", "landscape")
	endpoint := strings.TrimRight(u.opts.BaseURL, "/") + "/search/photos?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.opts.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash search: %s", resp.Status)
	}

	var payload struct {
		Results []photo `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode unsplash search: %w", err)
	}
	return payload.Results, nil
}

func (u *Unsplash) toImage(p photo, fallbackAlt string) *domain.FeaturedImage {
	utm := "?utm_source=" + url.QueryEscape(u.opts.AppName) + "&utm_medium=referral"
	photographer := p.User.Links.HTML + utm
	home := unsplashHome + utm

	alt := p.AltDescription
	if alt == "" {
		alt = fallbackAlt
	}
	return &domain.FeaturedImage{
		URL:          p.URLs.Regular,
		ThumbnailURL: p.URLs.Small,
		Alt:          alt,
		Credit: domain.ImageCredit{
			Name:            p.User.Name,
			Username:        p.User.Username,
			PhotographerURL: photographer,
			SourceURL:       home,
			Source:          "unsplash",
		},
		AttributionHTML: fmt.Sprintf(
			`Photo by <a href="%s" target="_blank" rel="noopener noreferrer">%s</a> on <a href="%s" target="_blank" rel="noopener noreferrer">Unsplash</a>`,
			html.EscapeString(photographer), html.EscapeString(p.User.Name), html.EscapeString(home)),
		AttributionText:  "Photo by " + p.User.Name + " on Unsplash",
		DownloadLocation: p.Links.DownloadLocation,
	}
}

// topicWords keeps up to three letter-only words longer than three characters.
func topicWords(topic string) string {
	cleaned := nonLetters.ReplaceAllString(strings.ToLower(topic), "")
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) > 3 {
			words = append(words, w)
		}
		if len(words) == topicWordLimit {
			break
		}
	}
	return strings.Join(words, " ")
}
