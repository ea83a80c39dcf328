package archive

import (
	"context"
	"fmt"
	"log/slog"

	"musicleague-backend/lib/scrapers/spotify"

	"go.opentelemetry.io/otel/codes"
)

// Catalog is the batched music-catalog lookup surface Enrich consumes.
// *spotify.Client satisfies it; tests substitute a fake.
//
// GetTracks and GetArtists must return results index-aligned with the
// requested ids: those endpoints do not echo ids alongside popularity, so
// the merges below are positional. GetAudioFeatures does echo ids and is
// merged by key instead. The asymmetry is a service quirk, not an
// inconsistency to fix.
type Catalog interface {
	GetTracks(ctx context.Context, ids []string) ([]*spotify.Track, error)
	GetArtists(ctx context.Context, ids []string) ([]*spotify.Artist, error)
	GetAudioFeatures(ctx context.Context, ids []string) ([]*spotify.AudioFeatures, error)
}

// Enrich appends catalog metadata to the submissions relation in three
// sequential passes: track popularity + primary artist, artist popularity
// + genres, then audio features. Rows the catalog cannot resolve keep nil
// descriptor columns; the row count never changes. A failed batch aborts
// enrichment rather than risking misaligned columns.
func Enrich(ctx context.Context, catalog Catalog, rows []SubmissionRow) error {
	ctx, span := tracer.Start(ctx, "Enrich")
	defer span.End()

	artistIDs, err := enrichTracks(ctx, catalog, rows)
	if err != nil {
		span.SetStatus(codes.Error, "track pass failed")
		return fmt.Errorf("track pass: %w", err)
	}
	if err := enrichArtists(ctx, catalog, rows, artistIDs); err != nil {
		span.SetStatus(codes.Error, "artist pass failed")
		return fmt.Errorf("artist pass: %w", err)
	}
	if err := enrichAudioFeatures(ctx, catalog, rows); err != nil {
		span.SetStatus(codes.Error, "audio-feature pass failed")
		return fmt.Errorf("audio-feature pass: %w", err)
	}

	slog.InfoContext(ctx, "enrichment complete", "rows", len(rows))
	return nil
}

// enrichTracks batch-fetches track metadata and merges it positionally:
// result index i within a chunk belongs to the row at offset+i. It
// returns the per-row primary-artist ids ("" where the track was
// unresolvable) for the artist pass.
func enrichTracks(ctx context.Context, catalog Catalog, rows []SubmissionRow) ([]string, error) {
	artistIDs := make([]string, len(rows))

	for start := 0; start < len(rows); start += spotify.TrackBatchLimit {
		end := start + spotify.TrackBatchLimit
		if end > len(rows) {
			end = len(rows)
		}

		ids := make([]string, 0, end-start)
		for _, row := range rows[start:end] {
			ids = append(ids, row.TrackID)
		}
		tracks, err := catalog.GetTracks(ctx, ids)
		if err != nil {
			return nil, err
		}

		for i, track := range tracks {
			if track == nil {
				continue
			}
			row := &rows[start+i]

			popularity := track.Popularity
			row.SongPopularity = &popularity

			// a resolvable track with no contributing artists is a
			// data error, not something to paper over with a default
			if len(track.Artists) == 0 {
				return nil, fmt.Errorf("track %s has no contributing artists", row.TrackID)
			}
			artistIDs[start+i] = track.Artists[0].ID
		}
	}
	return artistIDs, nil
}

// enrichArtists batch-fetches the primary artists of rows that resolved
// one, again merging positionally within each chunk.
func enrichArtists(ctx context.Context, catalog Catalog, rows []SubmissionRow, artistIDs []string) error {
	var idx []int
	var ids []string
	for i, id := range artistIDs {
		if id == "" {
			continue
		}
		idx = append(idx, i)
		ids = append(ids, id)
	}

	for start := 0; start < len(ids); start += spotify.ArtistBatchLimit {
		end := start + spotify.ArtistBatchLimit
		if end > len(ids) {
			end = len(ids)
		}

		artists, err := catalog.GetArtists(ctx, ids[start:end])
		if err != nil {
			return err
		}
		for i, artist := range artists {
			if artist == nil {
				continue
			}
			row := &rows[idx[start+i]]

			popularity := artist.Popularity
			row.ArtistPopularity = &popularity
			row.Genres = artist.Genres
		}
	}
	return nil
}

// enrichAudioFeatures batch-fetches audio descriptors and left-joins them
// back on the echoed track id: rows without a match keep every other
// column and nil descriptors.
func enrichAudioFeatures(ctx context.Context, catalog Catalog, rows []SubmissionRow) error {
	var ids []string
	seen := map[string]bool{}
	for _, row := range rows {
		if row.TrackID == "" || seen[row.TrackID] {
			continue
		}
		seen[row.TrackID] = true
		ids = append(ids, row.TrackID)
	}

	byID := map[string]*spotify.AudioFeatures{}
	for start := 0; start < len(ids); start += spotify.AudioFeatureBatchLimit {
		end := start + spotify.AudioFeatureBatchLimit
		if end > len(ids) {
			end = len(ids)
		}

		features, err := catalog.GetAudioFeatures(ctx, ids[start:end])
		if err != nil {
			return err
		}
		for _, f := range features {
			if f == nil {
				continue
			}
			byID[f.ID] = f
		}
	}

	for i := range rows {
		rows[i].Features = byID[rows[i].TrackID]
	}
	return nil
}
