package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"musicleague-backend/lib/scrapers/musicleague"
)

var roundsHeader = []string{
	"league_title", "round_name", "round_description", "round_number",
}

var resultsHeader = []string{
	"league_title", "round_number", "submitter_name", "song_name",
	"voter_name", "vote_value", "voter_comment",
}

var submissionsHeader = []string{
	"league_title", "round_number", "submitter_name", "song_name",
	"song_artist", "song_album", "spotify_link", "rank",
	"submitter_comment", "voted",
}

// enrichmentHeader extends submissionsHeader; the track id join key is
// deliberately not part of it.
var enrichmentHeader = []string{
	"song_popularity", "artist_popularity", "genres",
	"danceability", "energy", "key", "loudness", "mode", "speechiness",
	"acousticness", "instrumentalness", "liveness", "valence", "tempo",
	"duration_ms", "time_signature",
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteRounds writes the rounds relation as delimited text with a header
// row.
func WriteRounds(w io.Writer, rows []RoundRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(roundsHeader); err != nil {
		return err
	}
	for _, row := range rows {
		err := out.Write([]string{
			row.LeagueTitle,
			row.RoundName,
			row.RoundDescription,
			strconv.Itoa(row.RoundNumber),
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteResults writes the results relation as delimited text with a
// header row.
func WriteResults(w io.Writer, rows []ResultRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(resultsHeader); err != nil {
		return err
	}
	for _, row := range rows {
		err := out.Write([]string{
			row.LeagueTitle,
			strconv.Itoa(row.RoundNumber),
			row.SubmitterName,
			row.SongName,
			row.VoterName,
			strconv.Itoa(row.VoteValue),
			optStr(row.VoterComment),
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteSubmissions writes the submissions relation as delimited text with
// a header row. When enriched is set, the catalog metadata columns are
// appended; rows the catalog could not resolve emit empty cells there.
func WriteSubmissions(w io.Writer, rows []SubmissionRow, enriched bool) error {
	out := csv.NewWriter(w)

	header := submissionsHeader
	if enriched {
		header = append(append([]string{}, submissionsHeader...), enrichmentHeader...)
	}
	if err := out.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.LeagueTitle,
			strconv.Itoa(row.RoundNumber),
			row.SubmitterName,
			row.SongName,
			row.SongArtist,
			row.SongAlbum,
			row.SpotifyLink,
			strconv.Itoa(row.Rank),
			optStr(row.SubmitterComment),
			row.Voted,
		}
		if enriched {
			record = append(record,
				optInt(row.SongPopularity),
				optInt(row.ArtistPopularity),
				strings.Join(row.Genres, ";"),
			)
			if f := row.Features; f != nil {
				record = append(record,
					formatFloat(f.Danceability),
					formatFloat(f.Energy),
					strconv.Itoa(f.Key),
					formatFloat(f.Loudness),
					strconv.Itoa(f.Mode),
					formatFloat(f.Speechiness),
					formatFloat(f.Acousticness),
					formatFloat(f.Instrumentalness),
					formatFloat(f.Liveness),
					formatFloat(f.Valence),
					formatFloat(f.Tempo),
					strconv.Itoa(f.DurationMs),
					strconv.Itoa(f.TimeSignature),
				)
			} else {
				record = append(record, make([]string, 13)...)
			}
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ReadSubmissions reads a submissions relation back from delimited text.
// Columns are located by header name so both the plain and the enriched
// shape are accepted; the enrichment join key is re-derived from the
// spotify link.
func ReadSubmissions(r io.Reader) ([]SubmissionRow, error) {
	in := csv.NewReader(r)
	header, err := in.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range submissionsHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []SubmissionRow
	line := 1
	for {
		record, err := in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		roundNumber, err := strconv.Atoi(field("round_number"))
		if err != nil {
			return nil, fmt.Errorf("line %d: round_number: %w", line, err)
		}
		rank, err := strconv.Atoi(field("rank"))
		if err != nil {
			return nil, fmt.Errorf("line %d: rank: %w", line, err)
		}
		trackID, err := musicleague.TrackIDFromLink(field("spotify_link"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := SubmissionRow{
			LeagueTitle:   field("league_title"),
			RoundNumber:   roundNumber,
			SubmitterName: field("submitter_name"),
			SongName:      field("song_name"),
			SongArtist:    field("song_artist"),
			SongAlbum:     field("song_album"),
			SpotifyLink:   field("spotify_link"),
			Rank:          rank,
			Voted:         field("voted"),
			TrackID:       trackID,
		}
		if comment := field("submitter_comment"); comment != "" {
			row.SubmitterComment = &comment
		}
		rows = append(rows, row)
	}
	return rows, nil
}
