package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hangyav/podcats/internal/feed"
)

func newGenerateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate DIRECTORY",
		Short: "Print the RSS feed for a directory of audio files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args, "")
			if err != nil {
				return err
			}

			meta := feed.Metadata{
				Description: cfg.Feed.Description,
				Language:    cfg.Feed.Language,
				Author:      cfg.Feed.Author,
			}
			channel, err := feed.NewChannel(cfg.RootDir, cfg.RootURL, cfg.Title, cfg.Link, meta, newLogger(cmd))
			if err != nil {
				return err
			}

			data, err := channel.XML()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
