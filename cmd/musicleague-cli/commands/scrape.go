package commands

import (
	"log/slog"
	"os"
	"time"

	"musicleague-backend/lib/configutil"
	"musicleague-backend/lib/scrapers/musicleague"
	"musicleague-backend/lib/util/serviceutil"
	"musicleague-backend/services/archive"
	"musicleague-backend/services/archive/db"

	"github.com/spf13/cobra"
)

var (
	scrapeDb      *string
	scrapeOut     *string
	scrapeHeadful *bool
)

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "archive.db", "The database to write the raw scrape snapshot to.")
	scrapeOut = scrapeCmd.Flags().String("out", ".", "The directory to write the output tables to.")
	scrapeHeadful = scrapeCmd.Flags().Bool("headful", false, "Show the browser window while scraping.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--db <path/to/snapshot.db>] [--out <dir>]",
	Short: "Scrapes every completed league and writes the archive tables.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		creds := musicleague.Credentials{
			Username: os.Getenv("SPOTIFY_USERNAME"),
			Password: os.Getenv("SPOTIFY_PASSWORD"),
		}
		if creds.Username == "" || creds.Password == "" {
			serviceutil.Fatal("missing credentials", musicleague.ErrLoginFailed)
		}

		players, err := configutil.ReadConfig[PlayersConfig]("players.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read players config", err)
		}

		// the catalog client is constructed before the scrape so bad
		// credentials fail fast instead of after a long browser run
		spotifyClient, err := catalogFromEnv()
		if err != nil {
			serviceutil.Fatal("failed to initialize catalog client", err)
		}

		client, err := musicleague.NewClient(ctx, musicleague.ClientOptions{
			Headless: !*scrapeHeadful,
		})
		if err != nil {
			serviceutil.Fatal("failed to start browser session", err)
		}
		defer client.Close()

		slog.Info("scraping using user", "username", creds.Username)
		t1 := time.Now()
		records, err := client.Run(ctx, creds)
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		t2 := time.Now()
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())

		archive.NormalizePlayers(records, players.Aliases)

		database, err := db.Open(*scrapeDb)
		if err != nil {
			serviceutil.Fatal("failed to open snapshot db", err)
		}
		defer database.Close()
		if err := db.NewStore(database).Save(ctx, records); err != nil {
			serviceutil.Fatal("failed to save snapshot", err)
		}

		var catalog archive.Catalog
		if spotifyClient != nil {
			catalog = spotifyClient
		}
		if err := writeTables(ctx, records, *scrapeOut, catalog); err != nil {
			serviceutil.Fatal("failed to write output tables", err)
		}

		printSummary(records)
	},
}
