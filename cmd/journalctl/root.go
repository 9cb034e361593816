package main

import (
	"github.com/spf13/cobra"

	"github.com/mediajournal/mediajournal/client/views"
)

func newRootCommand() *cobra.Command {
	var apiFlag, configFlag, outputFlag string

	ctx := newCommandContext(&apiFlag, &configFlag, &outputFlag)

	rootCmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Keep a personal journal of blogs, songs, music videos, movies and recipes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "", "Journal service base URL")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: auto, table, cards or json")

	for _, cmd := range newAuthCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(newResourceCommand(ctx, "blogs", views.Blogs))
	rootCmd.AddCommand(newResourceCommand(ctx, "songs", views.Songs))
	rootCmd.AddCommand(newResourceCommand(ctx, "musicvideos", views.MusicVideos))
	rootCmd.AddCommand(newResourceCommand(ctx, "movies", views.Movies))
	rootCmd.AddCommand(newResourceCommand(ctx, "recipes", views.Recipes))

	return rootCmd
}
