package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

const (
	tiktokBaseURL        = "https://open.tiktokapis.com/v2"
	tiktokResearchTopics = 15
	tiktokCuratedPicks   = 10
)

var tiktokHashtags = []string{"makeup", "skincare", "beauty", "grwm"}

var tiktokFormats = []curatedTopic{
	{"viral TikTok beauty products worth the hype", []string{"viral", "beauty", "products"}},
	{"drugstore dupes for luxury makeup", []string{"drugstore", "dupe", "makeup"}},
	{"skincare ingredients that actually work", []string{"skincare", "ingredients"}},
	{"makeup products trending on TikTok", []string{"makeup", "trending", "tiktok"}},
	{"clean girl makeup essentials", []string{"clean girl", "makeup", "minimal"}},
	{"morning skincare routine for glowing skin", []string{"skincare", "routine", "morning"}},
	{"nighttime skincare routine tips", []string{"skincare", "routine", "night"}},
	{"easy 5 minute makeup routine", []string{"makeup", "routine", "quick"}},
	{"get ready with me makeup tips", []string{"grwm", "makeup", "tutorial"}},
	{"contour techniques for beginners", []string{"contour", "makeup", "tutorial"}},
	{"how to apply blush for your face shape", []string{"blush", "makeup", "tutorial"}},
	{"eyebrow shaping tips and tricks", []string{"brows", "eyebrows", "tutorial"}},
	{"lip liner techniques for fuller lips", []string{"lips", "liner", "makeup"}},
	{"how to get rid of acne fast", []string{"acne", "skincare", "tips"}},
	{"anti-aging skincare in your 20s", []string{"anti-aging", "skincare", "prevention"}},
	{"how to reduce dark circles", []string{"dark circles", "skincare", "eyes"}},
	{"dealing with textured skin", []string{"texture", "skincare", "pores"}},
	{"winter skincare tips for dry skin", []string{"winter", "dry skin", "skincare"}},
	{"long lasting makeup for oily skin", []string{"oily skin", "makeup", "tips"}},
	{"SPF and sunscreen myths debunked", []string{"spf", "sunscreen", "skincare"}},
}

var seasonalThemes = map[time.Month][]curatedTopic{
	time.January: {
		{"new year skincare reset routine", []string{"new year", "skincare", "reset"}},
		{"winter skincare essentials", []string{"winter", "skincare"}},
	},
	time.February: {
		{"Valentine's Day makeup looks", []string{"valentines", "makeup", "date night"}},
		{"romantic date night makeup tutorial", []string{"date night", "makeup"}},
	},
	time.March: {
		{"spring skincare transition tips", []string{"spring", "skincare"}},
		{"fresh spring makeup trends", []string{"spring", "makeup", "trends"}},
	},
	time.April: {
		{"spring cleaning your makeup collection", []string{"spring", "makeup", "declutter"}},
		{"lightweight spring foundation picks", []string{"spring", "foundation"}},
	},
	time.May: {
		{"summer-proof makeup tips", []string{"summer", "makeup", "sweatproof"}},
		{"glowy summer skincare routine", []string{"summer", "skincare", "glow"}},
	},
	time.June: {
		{"beach-ready skincare tips", []string{"summer", "beach", "skincare"}},
		{"waterproof makeup essentials", []string{"waterproof", "makeup", "summer"}},
	},
	time.July: {
		{"heat-proof makeup that lasts", []string{"summer", "makeup", "heatproof"}},
		{"summer glow skincare routine", []string{"summer", "glow", "skincare"}},
	},
	time.August: {
		{"back to school makeup essentials", []string{"back to school", "makeup"}},
		{"end of summer skincare reset", []string{"summer", "skincare", "reset"}},
	},
	time.September: {
		{"fall makeup trends to try", []string{"fall", "makeup", "trends"}},
		{"transitioning skincare for fall", []string{"fall", "skincare"}},
	},
	time.October: {
		{"Halloween makeup ideas", []string{"halloween", "makeup", "costume"}},
		{"fall skincare for dry weather", []string{"fall", "skincare", "dry"}},
	},
	time.November: {
		{"holiday party makeup looks", []string{"holiday", "party", "makeup"}},
		{"Black Friday beauty deals worth it", []string{"black friday", "deals", "beauty"}},
	},
	time.December: {
		{"holiday glam makeup tutorial", []string{"holiday", "glam", "makeup"}},
		{"winter skincare for cold weather", []string{"winter", "skincare", "cold"}},
	},
}

// TikTokOptions configures the TikTok source.
type TikTokOptions struct {
	ClientKey    string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	HTTPClient   *http.Client
	Now          func() time.Time
	Shuffle      func(n int, swap func(i, j int))
}

// TikTok combines research API hashtag counts with curated formats and
// monthly seasonal themes. Without client credentials it is disabled.
type TikTok struct {
	opts   TikTokOptions
	client *http.Client
	logger *slog.Logger
}

var _ ports.TrendSource = (*TikTok)(nil)

// NewTikTok wires the source. The research API client refreshes its token
// through the client-credentials flow.
func NewTikTok(opts TikTokOptions, logger *slog.Logger) *TikTok {
	if opts.BaseURL == "" {
		opts.BaseURL = tiktokBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = strings.TrimRight(opts.BaseURL, "/") + "/oauth/token/"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &TikTok{opts: opts, logger: logger}

	if opts.ClientKey != "" && opts.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:       opts.ClientKey,
			ClientSecret:   opts.ClientSecret,
			TokenURL:       opts.TokenURL,
			AuthStyle:      oauth2.AuthStyleInParams,
			EndpointParams: url.Values{"client_key": {opts.ClientKey}},
		}
		ctx := context.Background()
		if opts.HTTPClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
		}
		t.client = cc.Client(ctx)
		t.client.Timeout = 20 * time.Second
	}
	return t
}

func (t *TikTok) Name() string              { return "tiktok" }
func (t *TikTok) Platform() domain.Platform { return domain.PlatformTikTok }

// Enabled reports whether both client key and secret are configured.
func (t *TikTok) Enabled() bool { return t.client != nil }

// FetchTrends fails only when the source is disabled. A research API error
// drops that part and the curated and seasonal topics are still returned.
func (t *TikTok) FetchTrends(ctx context.Context) ([]domain.TrendCandidate, error) {
	if !t.Enabled() {
		return nil, domain.ErrSourceDisabled
	}

	var out []domain.TrendCandidate
	research, err := t.research(ctx)
	if err != nil {
		t.logger.Info("tiktok research api unavailable", "error", err)
	} else {
		out = append(out, research...)
	}

	out = append(out, pickCurated(tiktokFormats, tiktokCuratedPicks, 100, 5, "tiktok_curated", domain.PlatformTikTok, t.opts.Shuffle)...)
	out = append(out, t.seasonal()...)
	return uniqueByTopic(out), nil
}

type researchVideo struct {
	HashtagNames []string `json:"hashtag_names"`
}

type researchResponse struct {
	Data struct {
		Videos []researchVideo `json:"videos"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *TikTok) research(ctx context.Context) ([]domain.TrendCandidate, error) {
	now := t.opts.Now()
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"and": []map[string]any{{
				"field_name":   "hashtag_name",
				"operation":    "IN",
				"field_values": tiktokHashtags,
			}},
		},
		"max_count":  20,
		"start_date": now.AddDate(0, 0, -7).Format("20060102"),
		"end_date":   now.Format("20060102"),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal research query: %w", err)
	}

	endpoint := strings.TrimRight(t.opts.BaseURL, "/") + "/research/video/query/?fields=id,hashtag_names"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("research api: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var payload researchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode research response: %w", err)
	}
	if payload.Error.Code != "" && payload.Error.Code != "ok" {
		return nil, fmt.Errorf("research api: %s: %s", payload.Error.Code, payload.Error.Message)
	}
	return hashtagTopics(payload.Data.Videos), nil
}

// hashtagTopics counts hashtags across videos, most frequent first.
func hashtagTopics(videos []researchVideo) []domain.TrendCandidate {
	counts := map[string]int{}
	var order []string
	for _, v := range videos {
		for _, tag := range v.HashtagNames {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > tiktokResearchTopics {
		order = order[:tiktokResearchTopics]
	}

	out := make([]domain.TrendCandidate, 0, len(order))
	for _, tag := range order {
		out = append(out, domain.TrendCandidate{
			Topic:         formatTopic(tag),
			Tags:          []string{tag},
			Platform:      domain.PlatformTikTok,
			Source:        "tiktok_research",
			TrendingScore: float64(counts[tag]),
		})
	}
	return out
}

func (t *TikTok) seasonal() []domain.TrendCandidate {
	themes := seasonalThemes[t.opts.Now().Month()]
	out := make([]domain.TrendCandidate, 0, len(themes))
	for i, item := range themes {
		out = append(out, domain.TrendCandidate{
			Topic:         item.Topic,
			Tags:          append([]string(nil), item.Tags...),
			Platform:      domain.PlatformTikTok,
			Source:        "tiktok_seasonal",
			TrendingScore: 90 - 5*float64(i),
		})
	}
	return out
}
