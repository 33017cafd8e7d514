package commands

import (
	"github.com/spf13/cobra"

	"news-shorts/config"
	"news-shorts/pipeline"
)

var generateScriptCmd = &cobra.Command{
	Use:   "generate-script",
	Short: "Write script.txt and image_keywords.json from topic.json or raw keywords",
	RunE:  runGenerateScript,
}

func init() {
	rootCmd.AddCommand(generateScriptCmd)

	generateScriptCmd.Flags().String("topic", "topic.json", "topic record")
	generateScriptCmd.Flags().StringSlice("keywords", nil, "raw keywords used when no topic is available")
	generateScriptCmd.Flags().String("keywords-file", "", "keyword list used when no topic is available")
	generateScriptCmd.Flags().String("out", "script.txt", "script output path")
	generateScriptCmd.Flags().String("keywords-out", "image_keywords.json", "image keyword output path")
}

func runGenerateScript(cmd *cobra.Command, args []string) error {
	topicPath, _ := cmd.Flags().GetString("topic")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	keywordsFile, _ := cmd.Flags().GetString("keywords-file")
	out, _ := cmd.Flags().GetString("out")
	keywordsOut, _ := cmd.Flags().GetString("keywords-out")

	if len(keywords) == 0 && keywordsFile != "" {
		kws, err := config.ReadKeywords(keywordsFile)
		if err != nil {
			return err
		}
		keywords = kws
	}

	script, err := pipeline.GenerateScript(cmd.Context(), cfg, pipeline.ScriptOptions{
		TopicPath:   topicPath,
		Keywords:    keywords,
		ScriptOut:   out,
		KeywordsOut: keywordsOut,
	})
	if err != nil {
		return err
	}

	if script.Fallback {
		printWarn("SCRIPT (FALLBACK)")
	} else {
		printHeader("SCRIPT")
	}
	printField("provider", script.Provider)
	printField("hook", script.Hook)
	printField("keywords", script.Keywords)
	printField("written", out)
	return nil
}
