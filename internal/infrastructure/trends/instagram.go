package trends

import (
	"context"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

const instagramPicks = 5

var instagramFormats = []curatedTopic{
	{"Instagram Reels makeup transitions", []string{"reels", "makeup", "transition"}},
	{"aesthetic skincare shelfie organization", []string{"shelfie", "skincare", "aesthetic"}},
	{"soft glam makeup for photos", []string{"soft glam", "photogenic", "makeup"}},
	{"get ready with me Instagram edition", []string{"grwm", "instagram", "tutorial"}},
	{"makeup flatlay photography tips", []string{"flatlay", "photography", "makeup"}},
	{"Instagram vs reality makeup looks", []string{"instagram", "reality", "makeup"}},
	{"celebrity makeup artist secrets", []string{"celebrity", "makeup", "secrets"}},
	{"model off-duty skincare routine", []string{"model", "skincare", "routine"}},
	{"red carpet makeup breakdown", []string{"red carpet", "makeup", "celebrity"}},
}

// Instagram serves curated Instagram-style formats once an access token is
// configured. The Graph API needs a verified business account, so the token
// only gates the source for now.
type Instagram struct {
	accessToken string
	shuffle     func(n int, swap func(i, j int))
}

var _ ports.TrendSource = (*Instagram)(nil)

// NewInstagram builds the curated source. A nil shuffle uses math/rand.
func NewInstagram(accessToken string, shuffle func(n int, swap func(i, j int))) *Instagram {
	return &Instagram{accessToken: accessToken, shuffle: shuffle}
}

func (i *Instagram) Name() string              { return "instagram" }
func (i *Instagram) Platform() domain.Platform { return domain.PlatformInstagram }
func (i *Instagram) Enabled() bool             { return i.accessToken != "" }

func (i *Instagram) FetchTrends(context.Context) ([]domain.TrendCandidate, error) {
	if !i.Enabled() {
		return nil, domain.ErrSourceDisabled
	}
	return pickCurated(instagramFormats, instagramPicks, 70, 5, "instagram_curated", domain.PlatformInstagram, i.shuffle), nil
}
