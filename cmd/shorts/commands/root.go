// Package commands 는 shorts CLI 의 서브커맨드를 정의한다.
// 각 서브커맨드는 파이프라인 스테이지 하나이며 파일로만 입출력한다.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"news-shorts/config"
)

var (
	cfgFile  string
	logLevel string
	cfg      config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "shorts",
	Short: "News to vertical short video pipeline",
	Long: `shorts turns a news lead into a narrated vertical slideshow video.

Every stage is a subcommand that reads and writes plain files:
  shorts fetch-news --keywords-file keywords.txt --out topic.json
  shorts generate-script --topic topic.json --out script.txt
  shorts fetch-images --script script.txt --out-dir images
  shorts tts --script script.txt --out voice.mp3
  shorts build-video --images images --voice voice.mp3 --out final.mp4
  shorts notify "Pipeline finished"
  shorts upload-tiktok --video final.mp4 --caption "..."
  shorts history --limit 10
  shorts run                      # all of the above in out/<run-id>`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 는 SIGINT/SIGTERM 에 취소되는 컨텍스트로 CLI 를 실행하고 종료 코드를 돌려준다.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml found upward from cwd)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func initConfig() error {
	if err := config.InitApp(cfgFile); err != nil {
		return err
	}
	c := config.GetConfig()
	if logLevel != "" {
		c.Logging.Level = logLevel
		config.SetConfig(c)
	}
	config.InitLogger(c.Logging)
	cfg = c
	return nil
}

// pick 은 플래그 값이 비어 있으면 설정 기본값을 쓴다.
func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
