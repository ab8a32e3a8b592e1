package main

import (
	"github.com/Zuo-Peng/chat-export-viewer/internal/config"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "open <chatKey>",
		Short: "Extract the chat text and open it in $EDITOR at a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenChat(db, args[0], line, cfg.CacheDir)
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Line to jump to")

	return cmd
}
