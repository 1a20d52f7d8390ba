package main

import (
	"os"

	"github.com/spf13/cobra"

	"glow/internal/config"
	"glow/internal/database"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "glow",
		Short: "GLOW Wedding invitation builder",
		RunE:  runServe,
	}
	rootCmd.AddCommand(
		serveCmd(),
		usersCmd(),
		seedCmd(),
		backupCmd(),
		benchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads the environment and configuration and opens the database.
// Every subcommand starts here.
func openStore() *database.Store {
	utils.LoadEnv()
	config.Load()
	database.InitDB()

	store, err := database.NewStore(database.DB)
	if err != nil {
		logger.LogFatal("Database store: %v", err)
	}
	return store
}
