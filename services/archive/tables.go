package archive

import (
	"musicleague-backend/lib/scrapers/musicleague"
)

// deref gives comparable stand-ins for nullable columns so duplicate
// removal can key on full row equality.
func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// BuildResults projects the scraped set into the results relation: one
// row per (submission, voter) pair. Submissions without votes contribute
// no rows here; they are retained by BuildSubmissions regardless.
func BuildResults(records []musicleague.RoundSubmission) []ResultRow {
	var rows []ResultRow
	for _, rec := range records {
		for _, vote := range rec.Votes {
			rows = append(rows, ResultRow{
				LeagueTitle:   rec.LeagueTitle,
				RoundNumber:   rec.Round.Number,
				SubmitterName: rec.SubmitterName,
				SongName:      rec.SongName,
				VoterName:     vote.VoterName,
				VoteValue:     vote.Value,
				VoterComment:  vote.Comment,
			})
		}
	}
	return rows
}

type submissionKey struct {
	league     string
	round      int
	submitter  string
	song       string
	artist     string
	album      string
	link       string
	rank       int
	comment    string
	hasComment bool
	trackID    string
}

// BuildSubmissions projects the scraped set into the de-duplicated
// submissions relation. De-duplication is exact-duplicate removal on the
// full submission-level row (a submission's attributes are identical
// across its N voter rows), stable on first-seen order.
func BuildSubmissions(records []musicleague.RoundSubmission) []SubmissionRow {
	seen := map[submissionKey]bool{}
	var rows []SubmissionRow

	for _, rec := range records {
		comment, hasComment := deref(rec.SubmitterComment)
		key := submissionKey{
			league:     rec.LeagueTitle,
			round:      rec.Round.Number,
			submitter:  rec.SubmitterName,
			song:       rec.SongName,
			artist:     rec.SongArtist,
			album:      rec.SongAlbum,
			link:       rec.SpotifyLink,
			rank:       rec.Rank,
			comment:    comment,
			hasComment: hasComment,
			trackID:    rec.TrackID,
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		rows = append(rows, SubmissionRow{
			LeagueTitle:      rec.LeagueTitle,
			RoundNumber:      rec.Round.Number,
			SubmitterName:    rec.SubmitterName,
			SongName:         rec.SongName,
			SongArtist:       rec.SongArtist,
			SongAlbum:        rec.SongAlbum,
			SpotifyLink:      rec.SpotifyLink,
			Rank:             rec.Rank,
			SubmitterComment: rec.SubmitterComment,
			TrackID:          rec.TrackID,
		})
	}
	return rows
}

// BuildRounds projects the scraped set into the de-duplicated rounds
// relation, stable on first-seen order.
func BuildRounds(records []musicleague.RoundSubmission) []RoundRow {
	seen := map[RoundRow]bool{}
	var rows []RoundRow

	for _, rec := range records {
		row := RoundRow{
			LeagueTitle:      rec.LeagueTitle,
			RoundName:        rec.Round.Name,
			RoundDescription: rec.Round.Description,
			RoundNumber:      rec.Round.Number,
		}
		if seen[row] {
			continue
		}
		seen[row] = true
		rows = append(rows, row)
	}
	return rows
}
