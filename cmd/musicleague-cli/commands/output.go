package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"musicleague-backend/lib/scrapers/musicleague"
	"musicleague-backend/lib/scrapers/spotify"
	"musicleague-backend/services/archive"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PlayersConfig maps raw scraped display names to canonical player names.
type PlayersConfig struct {
	Aliases map[string]string `json:"aliases"`
}

// catalogFromEnv builds the catalog client when credentials are present in
// the environment; a nil catalog means enrichment is skipped.
func catalogFromEnv() (*spotify.Client, error) {
	id := os.Getenv("SPOTIFY_CLIENT_ID")
	secret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if id == "" || secret == "" {
		return nil, nil
	}
	return spotify.NewClient(spotify.ClientOptions{
		ClientID:     id,
		ClientSecret: secret,
	})
}

func writeCSV[T any](path string, rows []T, write func(*os.File, []T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeTables assembles the three output relations from the raw records
// and writes them under dir. With a non-nil catalog the submissions
// relation is enriched first.
func writeTables(ctx context.Context, records []musicleague.RoundSubmission, dir string, catalog archive.Catalog) error {
	rounds := archive.BuildRounds(records)
	results := archive.BuildResults(records)
	submissions := archive.BuildSubmissions(records)

	enriched := catalog != nil
	if enriched {
		if err := archive.Enrich(ctx, catalog, submissions); err != nil {
			return err
		}
	} else {
		slog.InfoContext(ctx, "catalog credentials not set, skipping enrichment")
	}

	err := writeCSV(filepath.Join(dir, "rounds.csv"), rounds, func(f *os.File, rows []archive.RoundRow) error {
		return archive.WriteRounds(f, rows)
	})
	if err != nil {
		return err
	}
	err = writeCSV(filepath.Join(dir, "results.csv"), results, func(f *os.File, rows []archive.ResultRow) error {
		return archive.WriteResults(f, rows)
	})
	if err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "submissions.csv"), submissions, func(f *os.File, rows []archive.SubmissionRow) error {
		return archive.WriteSubmissions(f, rows, enriched)
	})
}

// printSummary renders a per-league overview of what the run produced.
func printSummary(records []musicleague.RoundSubmission) {
	type leagueStats struct {
		rounds      map[int]bool
		submissions int
		votes       int
	}

	stats := map[string]*leagueStats{}
	var order []string
	for _, rec := range records {
		s, ok := stats[rec.LeagueTitle]
		if !ok {
			s = &leagueStats{rounds: map[int]bool{}}
			stats[rec.LeagueTitle] = s
			order = append(order, rec.LeagueTitle)
		}
		s.rounds[rec.Round.Number] = true
		s.submissions++
		s.votes += len(rec.Votes)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"League", "Rounds", "Submissions", "Votes"})
	for _, title := range order {
		s := stats[title]
		t.AppendRow(table.Row{title, len(s.rounds), s.submissions, s.votes})
	}
	t.Render()
}
