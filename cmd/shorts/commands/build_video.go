package commands

import (
	"github.com/spf13/cobra"

	"news-shorts/pipeline"
	"news-shorts/video"
)

var buildVideoCmd = &cobra.Command{
	Use:   "build-video",
	Short: "Assemble the slideshow, narration and music into final.mp4",
	RunE:  runBuildVideo,
}

func init() {
	rootCmd.AddCommand(buildVideoCmd)

	buildVideoCmd.Flags().String("images", "", "image directory")
	buildVideoCmd.Flags().String("voice", "", "narration audio")
	buildVideoCmd.Flags().String("out", "final.mp4", "video output path")
	buildVideoCmd.Flags().String("music", "", "background music (default: paths.music)")
	buildVideoCmd.Flags().String("sfx-shutter", "", "shutter sound effect (default: paths.sfx_shutter)")
	buildVideoCmd.Flags().String("sfx-flash", "", "flash sound effect (default: paths.sfx_flash)")
	buildVideoCmd.Flags().Bool("sfx", false, "mix sound effects at clip boundaries")
	buildVideoCmd.Flags().Bool("keep-work", false, "keep intermediate clips")
	_ = buildVideoCmd.MarkFlagRequired("images")
	_ = buildVideoCmd.MarkFlagRequired("voice")
}

func runBuildVideo(cmd *cobra.Command, args []string) error {
	images, _ := cmd.Flags().GetString("images")
	voice, _ := cmd.Flags().GetString("voice")
	out, _ := cmd.Flags().GetString("out")
	music, _ := cmd.Flags().GetString("music")
	shutter, _ := cmd.Flags().GetString("sfx-shutter")
	flash, _ := cmd.Flags().GetString("sfx-flash")

	c := cfg
	if v, _ := cmd.Flags().GetBool("sfx"); v {
		c.Video.SFX = true
	}
	if v, _ := cmd.Flags().GetBool("keep-work"); v {
		c.Video.KeepWork = true
	}

	res, err := pipeline.BuildVideo(cmd.Context(), c, video.Request{
		ImagesDir:  images,
		Voice:      voice,
		Music:      music,
		SFXShutter: shutter,
		SFXFlash:   flash,
		Output:     out,
	}, nil)
	if err != nil {
		return err
	}

	printHeader("VIDEO")
	printField("clips", res.Clips)
	printField("clip sec", res.ClipSec)
	printField("voice sec", res.VoiceSec)
	printField("music", res.Music)
	printField("written", res.Output)
	return nil
}
