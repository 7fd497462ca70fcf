package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/config"
	"github.com/sells-group/digitize-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "digitize-cli",
	Short: "Broadband map digitizer",
	Long:  "Converts color-coded broadband speed maps into georeferenced vector polygons and overlays them against boundary and point datasets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func initStore() (store.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		path = "digitize.db"
	}
	return store.NewSQLite(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
