package spotify

import (
	"context"
	"fmt"
	"strings"
)

// Track is the subset of catalog track metadata enrichment consumes.
type Track struct {
	Popularity int           `json:"popularity"`
	Artists    []TrackArtist `json:"artists"`
}

// TrackArtist identifies one contributing artist, in billing order.
type TrackArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Artist struct {
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
}

// AudioFeatures is the fixed set of numeric descriptors for a track.
// Non-numeric service metadata (resource URLs and the like) is not
// carried; ID is retained because result rows are joined on it.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       int     `json:"duration_ms"`
	TimeSignature    int     `json:"time_signature"`
}

func (c *Client) batch(ctx context.Context, path string, ids []string, limit int, result any) error {
	if len(ids) == 0 {
		return fmt.Errorf("%s: empty id batch", path)
	}
	if len(ids) > limit {
		return fmt.Errorf("%s: %d ids exceeds the batch limit of %d", path, len(ids), limit)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if res.IsError() {
		return fmt.Errorf("%s: status %d: %s", path, res.StatusCode(), res.String())
	}
	return nil
}

// GetTracks looks up at most TrackBatchLimit tracks. The returned slice
// is index-aligned with ids; unresolvable ids yield nil elements.
func (c *Client) GetTracks(ctx context.Context, ids []string) ([]*Track, error) {
	var body struct {
		Tracks []*Track `json:"tracks"`
	}
	err := c.batch(ctx, "/tracks", ids, TrackBatchLimit, &body)
	if err != nil {
		return nil, err
	}
	if len(body.Tracks) != len(ids) {
		return nil, fmt.Errorf("/tracks: requested %d ids, got %d results", len(ids), len(body.Tracks))
	}
	return body.Tracks, nil
}

// GetArtists looks up at most ArtistBatchLimit artists. The returned
// slice is index-aligned with ids; unresolvable ids yield nil elements.
func (c *Client) GetArtists(ctx context.Context, ids []string) ([]*Artist, error) {
	var body struct {
		Artists []*Artist `json:"artists"`
	}
	err := c.batch(ctx, "/artists", ids, ArtistBatchLimit, &body)
	if err != nil {
		return nil, err
	}
	if len(body.Artists) != len(ids) {
		return nil, fmt.Errorf("/artists: requested %d ids, got %d results", len(ids), len(body.Artists))
	}
	return body.Artists, nil
}

// GetAudioFeatures looks up at most AudioFeatureBatchLimit tracks. Unlike
// the track and artist lookups, every returned element echoes its track
// id, so callers join on AudioFeatures.ID rather than by position.
func (c *Client) GetAudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	var body struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	err := c.batch(ctx, "/audio-features", ids, AudioFeatureBatchLimit, &body)
	if err != nil {
		return nil, err
	}
	return body.AudioFeatures, nil
}
