package commands

import (
	"os"

	"musicleague-backend/lib/configutil"
	"musicleague-backend/lib/util/serviceutil"
	"musicleague-backend/services/archive"
	"musicleague-backend/services/archive/db"

	"github.com/spf13/cobra"
)

var (
	tablesDb  *string
	tablesOut *string
)

func init() {
	tablesDb = tablesCmd.Flags().String("db", "archive.db", "The snapshot database to read from.")
	tablesOut = tablesCmd.Flags().String("out", ".", "The directory to write the output tables to.")
	rootCmd.AddCommand(tablesCmd)
}

var tablesCmd = &cobra.Command{
	Use:   "tables [--db <path/to/snapshot.db>] [--out <dir>]",
	Short: "Rebuilds the output tables from a stored scrape snapshot without touching the network.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database, err := db.Open(*tablesDb)
		if err != nil {
			serviceutil.Fatal("failed to open snapshot db", err)
		}
		defer database.Close()

		records, err := db.NewStore(database).Load(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load snapshot", err)
		}

		players, err := configutil.ReadConfig[PlayersConfig]("players.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read players config", err)
		}
		archive.NormalizePlayers(records, players.Aliases)

		if err := writeTables(ctx, records, *tablesOut, nil); err != nil {
			serviceutil.Fatal("failed to write output tables", err)
		}

		printSummary(records)
	},
}
