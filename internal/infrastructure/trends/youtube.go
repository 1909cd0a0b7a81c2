package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

const (
	youtubeBaseURL      = "https://www.googleapis.com/youtube/v3"
	howToStyleCategory  = "26"
	youtubeMaxTrends    = 20
	youtubeSearchCalls  = 3
	youtubeMaxExtracted = 10
)

var youtubeQueries = []string{
	"beauty trends",
	"makeup tutorial viral",
	"skincare routine trending",
	"grwm makeup",
	"drugstore makeup haul",
	"skincare products worth it",
	"makeup hacks tiktok",
	"viral beauty products",
}

var beautyWords = []string{
	"makeup", "skincare", "beauty", "cosmetic", "skin", "face", "lips", "eyes",
	"foundation", "concealer", "blush", "bronzer", "highlighter", "mascara",
	"eyeshadow", "lipstick", "serum", "moisturizer", "spf", "sunscreen",
	"retinol", "cleanser", "toner", "acne", "glow", "contour", "brow",
	"lash", "nail", "hair", "grwm", "routine", "tutorial", "drugstore",
	"sephora", "ulta", "glossier", "charlotte tilbury", "rare beauty",
}

var (
	reAfterPipe   = regexp.MustCompile(`\|.*$`)
	reParens      = regexp.MustCompile(`\(.*?\)`)
	reBrackets    = regexp.MustCompile(`\[.*?\]`)
	reAfterDash   = regexp.MustCompile(`[-–—].*$`)
	reYear        = regexp.MustCompile(`\d{4}`)
	reBang        = regexp.MustCompile(`[!?]+`)
	reLeadArticle = regexp.MustCompile(`(?i)^(my|the|a|an)\s+`)

	longTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(.*?)\s+tutorial`),
		regexp.MustCompile(`(?i)^(.*?)\s+routine`),
		regexp.MustCompile(`(?i)^(.*?)\s+review`),
		regexp.MustCompile(`(?i)^how\s+to\s+(.*?)(?:\s+in|$)`),
		regexp.MustCompile(`(?i)^(.*?)\s+tips`),
		regexp.MustCompile(`(?i)^my\s+(.*?)\s+routine`),
	}

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`best\s+(\w+\s+\w+)`),
		regexp.MustCompile(`(\w+)\s+tutorial`),
		regexp.MustCompile(`(\w+)\s+routine`),
		regexp.MustCompile(`(\w+)\s+for\s+(\w+)`),
		regexp.MustCompile(`how\s+to\s+(\w+\s+\w+)`),
		regexp.MustCompile(`(\w+)\s+tips`),
		regexp.MustCompile(`(\w+)\s+hacks`),
		regexp.MustCompile(`viral\s+(\w+)`),
		regexp.MustCompile(`(\w+)\s+review`),
	}
)

// YouTubeOptions configures the YouTube source.
type YouTubeOptions struct {
	APIKey     string
	RegionCode string
	BaseURL    string
	HTTPClient *http.Client
	// RequestsPerSecond paces Data API calls; zero means 5.
	RequestsPerSecond float64
	Now               func() time.Time
}

// YouTube turns search results and the Howto & Style chart into topics.
type YouTube struct {
	opts    YouTubeOptions
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.TrendSource = (*YouTube)(nil)

// NewYouTube wires the source.
func NewYouTube(opts YouTubeOptions, logger *slog.Logger) *YouTube {
	if opts.BaseURL == "" {
		opts.BaseURL = youtubeBaseURL
	}
	if opts.RegionCode == "" {
		opts.RegionCode = "US"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &YouTube{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:  logger,
	}
}

func (y *YouTube) Name() string              { return "youtube" }
func (y *YouTube) Platform() domain.Platform { return domain.PlatformYouTube }
func (y *YouTube) Enabled() bool             { return y.opts.APIKey != "" }

// FetchTrends fails only when every API call failed.
func (y *YouTube) FetchTrends(ctx context.Context) ([]domain.TrendCandidate, error) {
	if !y.Enabled() {
		return nil, domain.ErrSourceDisabled
	}

	var (
		found []ytVideo
		errs  []error
	)
	for _, q := range youtubeQueries[:youtubeSearchCalls] {
		videos, err := y.search(ctx, q)
		if err != nil {
			y.logger.Warn("youtube search failed", "query", q, "error", err)
			errs = append(errs, err)
			continue
		}
		found = append(found, videos...)
	}
	popular, err := y.popular(ctx)
	if err != nil {
		y.logger.Warn("youtube chart failed", "error", err)
		errs = append(errs, err)
	}
	found = append(found, popular...)

	if len(errs) == youtubeSearchCalls+1 {
		return nil, errors.Join(errs...)
	}

	out := make([]domain.TrendCandidate, 0, len(found))
	titles := make([]string, 0, len(found))
	for _, v := range found {
		titles = append(titles, v.title)
		if topic := TopicFromTitle(v.title); topic != "" {
			out = append(out, domain.TrendCandidate{
				Topic:         topic,
				Title:         v.title,
				Description:   v.description,
				Platform:      domain.PlatformYouTube,
				Source:        v.source,
				TrendingScore: v.score,
			})
		}
	}
	out = append(out, titlePatternTrends(titles)...)

	out = uniqueByTopic(out)
	if len(out) > youtubeMaxTrends {
		out = out[:youtubeMaxTrends]
	}
	return out, nil
}

type ytVideo struct {
	title       string
	description string
	score       float64
	source      string
}

type ytSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
}

type ytSearchResponse struct {
	Items []struct {
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		Snippet    ytSnippet `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (y *YouTube) search(ctx context.Context, query string) ([]ytVideo, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("publishedAfter", y.opts.Now().AddDate(0, 0, -14).UTC().Format(time.RFC3339))
	params.Set("maxResults", "10")
	params.Set("relevanceLanguage", "en")
	params.Set("videoCategoryId", howToStyleCategory)

	var payload ytSearchResponse
	if err := y.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}
	out := make([]ytVideo, 0, len(payload.Items))
	for _, item := range payload.Items {
		out = append(out, ytVideo{
			title:       item.Snippet.Title,
			description: item.Snippet.Description,
			score:       80,
			source:      "youtube_search",
		})
	}
	return out, nil
}

func (y *YouTube) popular(ctx context.Context) ([]ytVideo, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", y.opts.RegionCode)
	params.Set("videoCategoryId", howToStyleCategory)
	params.Set("maxResults", "20")

	var payload ytVideosResponse
	if err := y.get(ctx, "/videos", params, &payload); err != nil {
		return nil, err
	}
	var out []ytVideo
	for _, item := range payload.Items {
		if !isBeautyRelated(item.Snippet.Title) {
			continue
		}
		views, _ := strconv.ParseFloat(item.Statistics.ViewCount, 64)
		out = append(out, ytVideo{
			title:       item.Snippet.Title,
			description: item.Snippet.Description,
			score:       math.Min(100, math.Floor(views/100000)),
			source:      "youtube_trending",
		})
	}
	return out, nil
}

func (y *YouTube) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("key", y.opts.APIKey)
	endpoint := strings.TrimRight(y.opts.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube %s: %w", path, err)
	}
	return nil
}

// TopicFromTitle strips channel noise from a video title. It returns "" when
// nothing of a reasonable length is left.
func TopicFromTitle(title string) string {
	cleaned := reAfterPipe.ReplaceAllString(title, "")
	cleaned = reParens.ReplaceAllString(cleaned, "")
	cleaned = reBrackets.ReplaceAllString(cleaned, "")
	cleaned = reAfterDash.ReplaceAllString(cleaned, "")
	cleaned = reYear.ReplaceAllString(cleaned, "")
	cleaned = reBang.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if utf8.RuneCountInString(cleaned) > 60 {
		for _, re := range longTitlePatterns {
			if m := re.FindStringSubmatch(cleaned); len(m) > 1 && m[1] != "" {
				cleaned = strings.TrimSpace(m[1])
				break
			}
		}
	}
	cleaned = strings.TrimSpace(reLeadArticle.ReplaceAllString(cleaned, ""))

	if n := utf8.RuneCountInString(cleaned); n < 5 || n > 80 {
		return ""
	}
	return formatTopic(cleaned)
}

func isBeautyRelated(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range beautyWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// titlePatternTrends counts recurring phrases such as "<x> routine" across
// titles and keeps those seen at least twice.
func titlePatternTrends(titles []string) []domain.TrendCandidate {
	counts := map[string]int{}
	var order []string
	for _, title := range titles {
		lower := strings.ToLower(title)
		for _, re := range titlePatterns {
			for _, m := range re.FindAllStringSubmatch(lower, -1) {
				phrase := m[0]
				if len(m) > 1 && m[1] != "" {
					phrase = m[1]
				}
				if len(phrase) <= 3 {
					continue
				}
				if _, ok := counts[phrase]; !ok {
					order = append(order, phrase)
				}
				counts[phrase]++
			}
		}
	}

	kept := order[:0]
	for _, p := range order {
		if counts[p] >= 2 {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return counts[kept[i]] > counts[kept[j]] })
	if len(kept) > youtubeMaxExtracted {
		kept = kept[:youtubeMaxExtracted]
	}

	out := make([]domain.TrendCandidate, 0, len(kept))
	for _, p := range kept {
		out = append(out, domain.TrendCandidate{
			Topic:         formatTopic(p),
			Platform:      domain.PlatformYouTube,
			Source:        "youtube_extracted",
			TrendingScore: float64(counts[p] * 20),
		})
	}
	return out
}
