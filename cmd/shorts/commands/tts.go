package commands

import (
	"github.com/spf13/cobra"

	"news-shorts/pipeline"
)

var ttsCmd = &cobra.Command{
	Use:   "tts",
	Short: "Synthesize the narration MP3 from script.txt",
	RunE: func(cmd *cobra.Command, args []string) error {
		script, _ := cmd.Flags().GetString("script")
		out, _ := cmd.Flags().GetString("out")

		if err := pipeline.Speak(cmd.Context(), cfg, script, out); err != nil {
			return err
		}
		printHeader("VOICE")
		printField("engine", cfg.TTS.Engine)
		printField("written", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ttsCmd)

	ttsCmd.Flags().String("script", "script.txt", "script path")
	ttsCmd.Flags().String("out", "voice.mp3", "audio output path")
}
