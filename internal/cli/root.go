// Package cli defines the cobra command tree for bde.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/db"
	"github.com/bigdealegypt/bigdeal/internal/logging"
)

var (
	flagFormat    string
	flagDB        string
	flagNoPersist bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bde",
		Short: "Browse BigDealEgypt properties and schedule viewings",
		Long: "A client for the BigDealEgypt marketplace. Browse properties, request and schedule viewings, " +
			"submit property requests, and run the sales-ops and admin workflows from the CLI or a local web UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(os.Getenv("BDE_DEV_MODE") == "true")
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/bde/bde.db)")
	root.PersistentFlags().BoolVar(&flagNoPersist, "no-persist", false, "keep the session in memory only")

	root.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newPropertiesCmd(),
		newPropertyCmd(),
		newViewingCmd(),
		newViewingsCmd(),
		newRequestsCmd(),
		newRequestCmd(),
		newNotificationsCmd(),
		newSalesOpsCmd(),
		newAdminCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
