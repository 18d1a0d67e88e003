package videoenrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	httputil "github.com/pep-pro/server/pkg/infrastructure/http"
)

// Recognized YouTube link shapes. Anything else is discarded entirely;
// non-video links must never reach a persisted exercise.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/embed/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video id out of a link, reporting
// whether the link had a recognized shape at all.
func ExtractVideoID(link string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL is the canonical form persisted on exercises.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ThumbnailURL derives the deterministic thumbnail for a video id, used
// when the search result metadata carries none.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

// Prober checks whether a video actually exists on the hosting platform.
type Prober interface {
	Exists(ctx context.Context, videoID string) (bool, error)
}

const oembedBaseURL = "https://www.youtube.com"

// OEmbedProber validates a video id against YouTube's oEmbed endpoint, a
// lightweight existence check that needs no API quota.
type OEmbedProber struct {
	BaseURL string
	Client  *http.Client
}

func NewOEmbedProber() *OEmbedProber {
	return &OEmbedProber{
		BaseURL: oembedBaseURL,
		Client:  &http.Client{Timeout: probeTimeout},
	}
}

func (p *OEmbedProber) Exists(ctx context.Context, videoID string) (bool, error) {
	probeURL := fmt.Sprintf("%s/oembed?url=%s&format=json",
		p.BaseURL, url.QueryEscape(WatchURL(videoID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		// Missing, removed or embedding-disabled videos all read as absent.
		return false, nil
	default:
		return false, httputil.ParseErrorResponse(resp)
	}
}
