package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"news-shorts/telegram"
)

var notifyCmd = &cobra.Command{
	Use:   "notify [message]",
	Short: "Send a Telegram message (no-op when TG_TOKEN/TG_CHAT are unset)",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := strings.TrimSpace(strings.Join(args, " "))
		if msg == "" {
			msg = "Pipeline finished"
		}
		return telegram.NewNotifier(cfg.Telegram).Notify(cmd.Context(), msg)
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
