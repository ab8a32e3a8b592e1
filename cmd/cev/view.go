package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chat-export-viewer/internal/archive"
	"github.com/Zuo-Peng/chat-export-viewer/internal/config"
	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
	"github.com/Zuo-Peng/chat-export-viewer/internal/render"
	"github.com/Zuo-Peng/chat-export-viewer/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func viewCmd() *cobra.Command {
	var me string
	var asJSON bool
	var width int

	cmd := &cobra.Command{
		Use:   "view <archive.zip>",
		Short: "Extract a chat export and show the conversation",
		Long: `Reads the first .txt entry of an exported chat archive, parses it into
messages and renders them grouped by day. On a terminal the chat opens in a
scrollable pager; otherwise plain text is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			if me == "" {
				me = cfg.CurrentUser
			}

			entry, err := archive.Extract(args[0])
			if err != nil {
				return err
			}

			msgs, stats := parse.ParseChat(entry.Text, loc)
			slog.Debug("parsed chat", "entry", entry.Name,
				"lines", stats.Lines, "messages", stats.Matched, "skipped", stats.Skipped)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(msgs)
			}

			opts := render.Options{CurrentUser: me, Width: width}
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunViewer(msgs, tui.ViewerTitle(msgs, entry.Name), opts)
			}

			out, _ := render.RenderChat(msgs, opts)
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&me, "me", "", "Sender name of the current user (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print parsed messages as JSON")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for plain output")

	return cmd
}
