package commands

import (
	"github.com/spf13/cobra"

	"news-shorts/pipeline"
)

var fetchNewsCmd = &cobra.Command{
	Use:   "fetch-news",
	Short: "Select one unused news article for the keywords and write topic.json",
	RunE:  runFetchNews,
}

func init() {
	rootCmd.AddCommand(fetchNewsCmd)

	fetchNewsCmd.Flags().String("keywords-file", "", "newline-delimited keyword list")
	fetchNewsCmd.Flags().String("out", "", "topic record output path")
	fetchNewsCmd.Flags().String("history", "", "history file (default: history.path from config)")
	fetchNewsCmd.Flags().Bool("no-record", false, "do not append the selected article to history")
	_ = fetchNewsCmd.MarkFlagRequired("keywords-file")
	_ = fetchNewsCmd.MarkFlagRequired("out")
}

func runFetchNews(cmd *cobra.Command, args []string) error {
	keywordsFile, _ := cmd.Flags().GetString("keywords-file")
	out, _ := cmd.Flags().GetString("out")
	historyPath, _ := cmd.Flags().GetString("history")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	topic, err := pipeline.FetchNews(cmd.Context(), cfg, pipeline.NewsOptions{
		KeywordsFile: keywordsFile,
		HistoryPath:  historyPath,
		Out:          out,
		Record:       !noRecord,
	})
	if err != nil {
		return err
	}

	if topic.IsError() {
		printWarn("NO NEWS")
		printField("written", out)
		return nil
	}
	printHeader("NEWS FOUND")
	printField("title", topic.Title)
	printField("link", topic.Link)
	printField("source", topic.Source)
	printField("tier", string(topic.Tier))
	printField("window", topic.Window)
	printField("keyword", topic.Keyword)
	if topic.Published != nil {
		printField("published", topic.Published.Format("2006-01-02 15:04 MST"))
	}
	return nil
}
