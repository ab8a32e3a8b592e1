package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chat-export-viewer/internal/config"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/spf13/cobra"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [archive.zip...]",
		Short: "Index chat exports under the archive root, or the given archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if len(args) > 0 {
				for _, path := range args {
					key, err := index.ImportArchive(db, path, loc)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					fmt.Fprintf(os.Stderr, "Imported %s\n", key)
				}
				return nil
			}

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.ArchiveRoot)

			stats, err := index.IndexAll(db, cfg.ArchiveRoot, loc)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
