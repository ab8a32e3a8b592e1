package main

import (
	"log/slog"

	"github.com/Zuo-Peng/chat-export-viewer/internal/config"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/search"
	"github.com/Zuo-Peng/chat-export-viewer/internal/tui"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all indexed chats sorted by last message",
		Long:  `Opens a TUI panel showing all indexed chats, most recent first. Type to filter by title or participant.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := index.IndexAll(db, cfg.ArchiveRoot, loc); err != nil {
				slog.Warn("auto-index failed", "root", cfg.ArchiveRoot, "err", err)
			}

			opts := search.Options{
				Since: since,
				Limit: limit,
			}

			return tui.RunList(db, opts, cfg.CurrentUser)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only chats active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
