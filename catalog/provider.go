package catalog

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jackccrawford/msona/apiclient"
	"github.com/jackccrawford/msona/cache"
	"github.com/jackccrawford/msona/logbuf"
)

// searchMarket scopes searches and top-track lookups.
const searchMarket = "US"

// Config configures a Provider.
type Config struct {
	// Client issues the catalog requests. Required.
	Client *apiclient.Client

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink

	// FeaturesTTL bounds the audio-features cache. Default: cache.DefaultTTL.
	FeaturesTTL time.Duration
}

// Provider is a music-catalog client.
type Provider struct {
	client   *apiclient.Client
	log      *logbuf.Sink
	features *cache.Cache[Features]
}

// New creates a provider, applying defaults to the config.
func New(config Config) *Provider {
	return &Provider{
		client:   config.Client,
		log:      config.Log,
		features: cache.New[Features](cache.Config{TTL: config.FeaturesTTL}),
	}
}

type searchResponse struct {
	Tracks struct {
		Items []Track `json:"items"`
	} `json:"tracks"`
}

// SearchTracks searches for tracks matching query, keeping only previewable
// valid tracks, most popular first. An empty (or whitespace-only) query
// returns an empty result without touching the network.
func (p *Provider) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Track{}, nil
	}
	p.logInfo("searching tracks", map[string]any{"query": query})

	params := url.Values{
		"type":   {"track"},
		"q":      {query},
		"market": {searchMarket},
		"limit":  {"50"},
	}
	resp, err := apiclient.GetJSON[searchResponse](ctx, p.client, "/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		if t.PreviewURL == nil || *t.PreviewURL == "" || !t.Valid() {
			continue
		}
		tracks = append(tracks, t)
	}
	slices.SortFunc(tracks, func(a, b Track) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	p.logInfo("search completed", map[string]any{"results": len(tracks)})
	return tracks, nil
}

// TrackFeatures returns the audio features for a track, cached in-process.
func (p *Provider) TrackFeatures(ctx context.Context, trackID string) (Features, error) {
	return p.features.GetOrFill(ctx, trackID, func(ctx context.Context) (Features, error) {
		return apiclient.GetJSON[Features](ctx, p.client, "/audio-features/"+trackID)
	})
}

// Artist looks up one artist.
func (p *Provider) Artist(ctx context.Context, artistID string) (Artist, error) {
	return apiclient.GetJSON[Artist](ctx, p.client, "/artists/"+artistID)
}

// Album looks up one album.
func (p *Provider) Album(ctx context.Context, albumID string) (Album, error) {
	return apiclient.GetJSON[Album](ctx, p.client, "/albums/"+albumID)
}

type tracksResponse struct {
	Tracks []Track `json:"tracks"`
}

// ArtistTopTracks returns an artist's top tracks, validity-filtered.
func (p *Provider) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=%s", artistID, searchMarket)
	resp, err := apiclient.GetJSON[tracksResponse](ctx, p.client, endpoint)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		if t.Valid() {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// Seeds select the starting points for a recommendation request. At least
// one of the three lists should be non-empty.
type Seeds struct {
	Tracks  []string
	Artists []string
	Genres  []string
}

// Recommendations returns up to 20 tracks seeded by the given tracks,
// artists, and genres.
func (p *Provider) Recommendations(ctx context.Context, seeds Seeds) ([]Track, error) {
	params := url.Values{
		"seed_tracks":  {strings.Join(seeds.Tracks, ",")},
		"seed_artists": {strings.Join(seeds.Artists, ",")},
		"seed_genres":  {strings.Join(seeds.Genres, ",")},
		"limit":        {"20"},
	}
	resp, err := apiclient.GetJSON[tracksResponse](ctx, p.client, "/recommendations?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

func (p *Provider) logInfo(msg string, data any) {
	if p.log == nil {
		return
	}
	p.log.Info("catalog", msg, data)
}
