package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"news-shorts/history"
)

var historyOpts struct {
	path  string
	limit int64
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recently used articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := history.Open(ctx, cfg.History, historyOpts.path)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}()

		entries, err := store.Recent(ctx, historyOpts.limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			printWarn("HISTORY EMPTY")
			return nil
		}
		printHeader("HISTORY")
		for _, e := range entries {
			if !e.UsedAt.IsZero() {
				printField("used", e.UsedAt.Local().Format(time.DateTime))
			}
			printField("keyword", e.Keyword)
			printField("title", e.Title)
			printField("link", e.Link)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyOpts.path, "history", "", "history file (file backend; default from config)")
	historyCmd.Flags().Int64Var(&historyOpts.limit, "limit", 20, "number of entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
