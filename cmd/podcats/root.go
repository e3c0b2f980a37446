package main

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/hangyav/podcats/internal/config"
)

// rootFlags collects the flag values shared by the subcommands.
type rootFlags struct {
	url        string
	title      string
	link       string
	feedConfig string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "podcats",
		Short: "Podcast feed generator and server for local audio files",
		Long: "Podcats generates an RSS feed for podcast episodes from local audio " +
			"files and, optionally, serves the feed as well as the episode files " +
			"via a built-in web server so that they can be imported into a " +
			"podcast client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return err
			}
			return errors.New("a command is required: generate or serve")
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.url, "url", "",
		"root URL for episode files (default "+config.DefaultRootURL+", suitable for the built-in server)")
	rootCmd.PersistentFlags().StringVar(&flags.title, "title", "", "optional feed title")
	rootCmd.PersistentFlags().StringVar(&flags.link, "link", "", "optional feed link")
	rootCmd.PersistentFlags().StringVar(&flags.feedConfig, "feed-config", "",
		"optional YAML file with extended feed metadata")

	rootCmd.AddCommand(newGenerateCommand(&flags))
	rootCmd.AddCommand(newServeCommand(&flags))

	return rootCmd
}

func loadConfig(flags *rootFlags, args []string, addr string) (config.Config, error) {
	return config.Load(config.Options{
		Directory:      args[0],
		URL:            flags.url,
		Title:          flags.title,
		Link:           flags.link,
		ListenAddr:     addr,
		FeedConfigPath: flags.feedConfig,
	})
}

func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "podcats ", log.LstdFlags|log.Lmsgprefix)
}
