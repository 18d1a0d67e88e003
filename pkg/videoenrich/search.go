package videoenrich

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	searchTimeout = 20 * time.Second
	probeTimeout  = 10 * time.Second

	// How many ranked results to consider per query.
	searchResultCount = 5
)

// Result is one ranked hit from the video search provider.
type Result struct {
	Link         string
	Title        string
	ThumbnailURL string
}

// Searcher queries the external video search provider.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// CustomSearchClient searches through the Google Programmable Search JSON
// API, scoped by an engine configured for video results. The API key is
// fetched fresh per invocation by the caller.
type CustomSearchClient struct {
	APIKey   string
	EngineID string
}

func (c *CustomSearchClient) Search(ctx context.Context, query string) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return nil, err
	}

	resp, err := svc.Cse.List().Cx(c.EngineID).Q(query).Num(searchResultCount).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Link:         item.Link,
			Title:        item.Title,
			ThumbnailURL: thumbnailFromPagemap(item.Pagemap),
		})
	}
	return results, nil
}

// pagemapThumbnails is the slice of the pagemap we care about; the rest of
// the metadata blob is ignored.
type pagemapThumbnails struct {
	CseThumbnail []struct {
		Src string `json:"src"`
	} `json:"cse_thumbnail"`
	VideoObject []struct {
		ThumbnailURL string `json:"thumbnailurl"`
	} `json:"videoobject"`
}

func thumbnailFromPagemap(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var pm pagemapThumbnails
	if err := json.Unmarshal(raw, &pm); err != nil {
		return ""
	}
	if len(pm.CseThumbnail) > 0 && pm.CseThumbnail[0].Src != "" {
		return pm.CseThumbnail[0].Src
	}
	if len(pm.VideoObject) > 0 {
		return pm.VideoObject[0].ThumbnailURL
	}
	return ""
}
