package commands

import (
	"github.com/spf13/cobra"

	"news-shorts/tiktok"
)

var uploadTikTokCmd = &cobra.Command{
	Use:   "upload-tiktok",
	Short: "Open the TikTok upload page with the video attached; the operator clicks Post",
	RunE:  runUploadTikTok,
}

func init() {
	rootCmd.AddCommand(uploadTikTokCmd)

	uploadTikTokCmd.Flags().String("video", "final.mp4", "video to upload")
	uploadTikTokCmd.Flags().String("caption", "", "post caption")
	uploadTikTokCmd.Flags().String("state", "", "cookie state file (default: TIKTOK_STATE or tiktok.state_file)")
	uploadTikTokCmd.Flags().Int("wait-minutes", 0, "minutes to keep the browser open (default: tiktok.wait_minutes)")
	uploadTikTokCmd.Flags().Bool("headless", false, "run the browser headless")
}

func runUploadTikTok(cmd *cobra.Command, args []string) error {
	videoPath, _ := cmd.Flags().GetString("video")
	caption, _ := cmd.Flags().GetString("caption")
	state, _ := cmd.Flags().GetString("state")
	wait, _ := cmd.Flags().GetInt("wait-minutes")
	headless, _ := cmd.Flags().GetBool("headless")

	tc := cfg.TikTok
	tc.StateFile = pick(state, tc.StateFile)
	if wait > 0 {
		tc.WaitMinutes = wait
	}
	if headless {
		tc.Headless = true
	}

	if err := tiktok.NewUploader(tc, cfg.Browser).Upload(cmd.Context(), videoPath, caption); err != nil {
		return err
	}
	printHeader("TIKTOK")
	printField("state", tc.StateFile)
	return nil
}
