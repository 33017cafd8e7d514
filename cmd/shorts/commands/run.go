package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"news-shorts/config"
	"news-shorts/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in <output>/<run-id>, optionally on a cron schedule",
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("keywords-file", "", "keyword list (default: paths.keywords_file)")
	runCmd.Flags().String("output", "", "output root (default: paths.output)")
	runCmd.Flags().String("history", "", "history file (default: history.path)")
	runCmd.Flags().Bool("upload", false, "open the TikTok upload page after a successful build")
	runCmd.Flags().Bool("notify", true, "send a Telegram summary")
	runCmd.Flags().Bool("no-record", false, "do not append the selected article to history")
	runCmd.Flags().Bool("cron", false, "repeat on schedule.cron until interrupted")
	runCmd.Flags().String("schedule", "", "cron spec override (implies --cron)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	keywordsFile, _ := cmd.Flags().GetString("keywords-file")
	output, _ := cmd.Flags().GetString("output")
	historyPath, _ := cmd.Flags().GetString("history")
	upload, _ := cmd.Flags().GetBool("upload")
	notify, _ := cmd.Flags().GetBool("notify")
	noRecord, _ := cmd.Flags().GetBool("no-record")
	useCron, _ := cmd.Flags().GetBool("cron")
	spec, _ := cmd.Flags().GetString("schedule")

	o := pipeline.NewOrchestrator(cfg, pipeline.RunOptions{
		KeywordsFile: pick(keywordsFile, cfg.Paths.KeywordsFile),
		HistoryPath:  historyPath,
		OutputDir:    pick(output, cfg.Paths.Output),
		Upload:       upload,
		Notify:       notify,
		NoRecord:     noRecord,
	})

	once := func(ctx context.Context) error {
		state, err := o.Run(ctx)
		if state != nil {
			if state.Success {
				printHeader("RUN " + state.RunID)
			} else {
				printWarn("RUN " + state.RunID + " FAILED")
			}
			printField("dir", state.RunDir)
			printField("video", state.Artifacts["video"])
			for stage, msg := range state.Errors {
				printField(stage, msg)
			}
		}
		return err
	}

	if !useCron && spec == "" {
		return once(cmd.Context())
	}

	sc := cfg.Schedule
	sc.Cron = pick(spec, sc.Cron)
	return pipeline.Schedule(cmd.Context(), sc, func(ctx context.Context) {
		if err := once(ctx); err != nil && !errors.Is(err, context.Canceled) {
			config.Logger.Errorf("[run] scheduled run failed: %v", err)
		}
	})
}
