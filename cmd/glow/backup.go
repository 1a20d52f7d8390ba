package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"glow/internal/config"
	"glow/internal/media"
	"glow/pkg/utils"
)

func backupCmd() *cobra.Command {
	var (
		dir   string
		toS3  bool
		clean bool
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent snapshot of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			spinner, _ := pterm.DefaultSpinner.Start("Writing snapshot...")
			path, err := store.Snapshot(ctx, dir)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("Snapshot written: ", path, " (", utils.FormatBytes(info.Size()), ")")

			if !toS3 {
				return nil
			}
			s3, err := media.NewS3(ctx, s3Config(config.AppConfig))
			if err != nil {
				return err
			}
			key, err := s3.PutBackup(ctx, path)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Uploaded to s3://%s/%s\n", config.AppConfig.Media.S3.Bucket, key)
			if clean {
				return os.Remove(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", filepath.Join(".", "backups"), "Directory for the snapshot file")
	cmd.Flags().BoolVar(&toS3, "s3", false, "Upload the snapshot to the media bucket")
	cmd.Flags().BoolVar(&clean, "rm", false, "Remove the local file after a successful upload")
	return cmd
}
