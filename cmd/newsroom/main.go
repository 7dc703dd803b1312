package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citypress/newsroom/internal/newsroom/bootstrap"
	"github.com/citypress/newsroom/internal/newsroom/config"
	"github.com/citypress/newsroom/internal/newsroom/repo"
	"github.com/citypress/newsroom/pkg/database"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/version"
)

/**
 * @file: main.go
 * @description: newsroom media server
 */

var configFile string

var rootCmd = &cobra.Command{
	Use:           "newsroom",
	Short:         "newsroom serves the media library of the city press",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		bootstrap.Run(app, cleanup)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConf, err := config.LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		logger, err := log.ProvideLogger(&appConf.Log)
		if err != nil {
			return err
		}
		db, cleanup, err := database.ProvideGorm(appConf.Database, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := repo.Migrate(database.ProvideDB(db)); err != nil {
			return err
		}
		logger.Log.Info("database migrated")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. --conf ./conf.d/config.toml")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
