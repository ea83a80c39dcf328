// Package db persists raw scrape snapshots to SQLite so the output
// relations can be rebuilt and re-enriched without re-scraping.
package db

import (
	"context"
	"database/sql"

	"musicleague-backend/lib/scrapers/musicleague"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := database.Exec(Schema); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Save replaces the stored snapshot with the given record set. Each run
// produces a full snapshot, so the previous contents are dropped rather
// than merged.
func (s Store) Save(ctx context.Context, records []musicleague.RoundSubmission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions`); err != nil {
		return err
	}

	for _, rec := range records {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (
				league_title, round_number, round_name, round_description,
				submitter_name, song_name, song_artist, song_album,
				spotify_link, track_id, rank, submitter_comment, voted
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.LeagueTitle,
			rec.Round.Number,
			rec.Round.Name,
			rec.Round.Description,
			rec.SubmitterName,
			rec.SongName,
			rec.SongArtist,
			rec.SongAlbum,
			rec.SpotifyLink,
			rec.TrackID,
			rec.Rank,
			rec.SubmitterComment,
			"",
		)
		if err != nil {
			return err
		}
		submissionID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for _, vote := range rec.Votes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO votes (submission_id, voter_name, vote_value, voter_comment)
				VALUES (?, ?, ?, ?)`,
				submissionID,
				vote.VoterName,
				vote.Value,
				vote.Comment,
			)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Load reads the stored snapshot back in insertion order, preserving the
// nil-vs-present distinction of optional comments.
func (s Store) Load(ctx context.Context) ([]musicleague.RoundSubmission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, league_title, round_number, round_name, round_description,
			submitter_name, song_name, song_artist, song_album,
			spotify_link, track_id, rank, submitter_comment
		FROM submissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []musicleague.RoundSubmission
	ids := []int64{}
	for rows.Next() {
		var rec musicleague.RoundSubmission
		var id int64
		var comment sql.NullString
		err := rows.Scan(
			&id,
			&rec.LeagueTitle,
			&rec.Round.Number,
			&rec.Round.Name,
			&rec.Round.Description,
			&rec.SubmitterName,
			&rec.SongName,
			&rec.SongArtist,
			&rec.SongAlbum,
			&rec.SpotifyLink,
			&rec.TrackID,
			&rec.Rank,
			&comment,
		)
		if err != nil {
			return nil, err
		}
		if comment.Valid {
			rec.SubmitterComment = &comment.String
		}
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		votes, err := s.loadVotes(ctx, id)
		if err != nil {
			return nil, err
		}
		records[i].Votes = votes
	}
	return records, nil
}

func (s Store) loadVotes(ctx context.Context, submissionID int64) ([]musicleague.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_name, vote_value, voter_comment
		FROM votes WHERE submission_id = ? ORDER BY id`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []musicleague.Vote
	for rows.Next() {
		var vote musicleague.Vote
		var comment sql.NullString
		if err := rows.Scan(&vote.VoterName, &vote.Value, &comment); err != nil {
			return nil, err
		}
		if comment.Valid {
			vote.Comment = &comment.String
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}
