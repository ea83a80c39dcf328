package commands

import (
	"fmt"
	"os"

	"musicleague-backend/lib/util/serviceutil"
	"musicleague-backend/services/archive"

	"github.com/spf13/cobra"
)

var (
	enrichIn  *string
	enrichOut *string
)

func init() {
	enrichIn = enrichCmd.Flags().String("in", "submissions.csv", "The submissions table to enrich.")
	enrichOut = enrichCmd.Flags().String("out", "submissions.csv", "Where to write the enriched table.")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [--in <submissions.csv>] [--out <submissions.csv>]",
	Short: "Appends Spotify catalog metadata to an existing submissions table.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		catalog, err := catalogFromEnv()
		if err != nil {
			serviceutil.Fatal("failed to initialize catalog client", err)
		}
		if catalog == nil {
			serviceutil.Fatal("missing catalog credentials",
				fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set"))
		}

		in, err := os.Open(*enrichIn)
		if err != nil {
			serviceutil.Fatal("failed to open submissions table", err)
		}
		rows, err := archive.ReadSubmissions(in)
		in.Close()
		if err != nil {
			serviceutil.Fatal("failed to parse submissions table", err)
		}

		if err := archive.Enrich(ctx, catalog, rows); err != nil {
			serviceutil.Fatal("enrichment failed", err)
		}

		err = writeCSV(*enrichOut, rows, func(f *os.File, rows []archive.SubmissionRow) error {
			return archive.WriteSubmissions(f, rows, true)
		})
		if err != nil {
			serviceutil.Fatal("failed to write enriched table", err)
		}
	},
}
