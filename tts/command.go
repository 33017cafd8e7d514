package tts

import (
	"context"
	"os"
	"time"

	"news-shorts/config"
	"news-shorts/shell"
)

const commandAttempts = 3

// CommandTTS 는 edge-tts 처럼 --text / --write-media 를 받는 외부 CLI 를 호출한다.
type CommandTTS struct {
	command string
	voice   string
	runner  shell.Runner
	backoff time.Duration
}

func NewCommandTTS(cfg config.TTSConfig, runner shell.Runner) *CommandTTS {
	return &CommandTTS{
		command: cfg.Command,
		voice:   cfg.Voice,
		runner:  runner,
		backoff: 2 * time.Second,
	}
}

func (c *CommandTTS) Name() string { return c.command }

// Args 는 외부 CLI 에 넘길 인자 목록이다.
func (c *CommandTTS) Args(text, outPath string) []string {
	var args []string
	if c.voice != "" {
		args = append(args, "--voice", c.voice)
	}
	return append(args, "--text", text, "--write-media", outPath)
}

func (c *CommandTTS) Synthesize(ctx context.Context, text, outPath string) error {
	if text == "" {
		return ErrEmptyText
	}

	var err error
	for attempt := 1; attempt <= commandAttempts; attempt++ {
		err = c.runner.Run(ctx, c.command, c.Args(text, outPath)...)
		if err == nil {
			if info, statErr := os.Stat(outPath); statErr == nil && info.Size() > 0 {
				return nil
			}
			err = os.ErrNotExist
		}
		config.Logger.Warnf("[tts] %s attempt %d failed: %v", c.command, attempt, err)
		if attempt == commandAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return err
}
