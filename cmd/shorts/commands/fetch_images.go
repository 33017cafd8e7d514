package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"news-shorts/pipeline"
)

var fetchImagesCmd = &cobra.Command{
	Use:   "fetch-images",
	Short: "Download at least images.min_count vertical frames for the script",
	RunE:  runFetchImages,
}

func init() {
	rootCmd.AddCommand(fetchImagesCmd)

	fetchImagesCmd.Flags().String("script", "", "script.txt path")
	fetchImagesCmd.Flags().String("out-dir", "", "image output directory")
	fetchImagesCmd.Flags().String("keywords", "", "image_keywords.json (queries are derived from the script when absent)")
	fetchImagesCmd.Flags().String("topic", "", "topic.json, used for the article image")
	fetchImagesCmd.Flags().String("manifest", "", "images.json manifest path (default: <out-dir>/images.json)")
	_ = fetchImagesCmd.MarkFlagRequired("script")
	_ = fetchImagesCmd.MarkFlagRequired("out-dir")
}

func runFetchImages(cmd *cobra.Command, args []string) error {
	script, _ := cmd.Flags().GetString("script")
	outDir, _ := cmd.Flags().GetString("out-dir")
	keywords, _ := cmd.Flags().GetString("keywords")
	topic, _ := cmd.Flags().GetString("topic")
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = filepath.Join(outDir, "images.json")
	}

	manifest, err := pipeline.FetchImages(cmd.Context(), cfg, pipeline.ImageOptions{
		ScriptPath:   script,
		KeywordsPath: keywords,
		TopicPath:    topic,
		OutDir:       outDir,
		ManifestPath: manifestPath,
	})
	if err != nil {
		return err
	}

	printHeader("IMAGES")
	printField("total", len(manifest.Images))
	printField("download", manifest.Downloaded())
	printField("dir", outDir)
	return nil
}
