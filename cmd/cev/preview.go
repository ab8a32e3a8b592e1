package main

import (
	"fmt"

	"github.com/Zuo-Peng/chat-export-viewer/internal/config"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/render"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var line int
	var context int
	var query string
	var width int

	cmd := &cobra.Command{
		Use:   "preview <chatKey>",
		Short: "Preview an indexed chat with context around a hit",
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

			out, _, err := render.RenderStoredChat(db, args[0], render.Options{
				CurrentUser: cfg.CurrentUser,
				Width:       width,
				Query:       query,
				HitLine:     line,
				Context:     context,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Export line of the message to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")

	return cmd
}
