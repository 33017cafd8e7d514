package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"news-shorts/config"
)

// cronLogger 는 cron 내부 로그를 전역 로거로 보낸다.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	config.Logger.Debugf("[cron] %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	config.Logger.Errorf("[cron] %s: %v %v", msg, err, keysAndValues)
}

// Schedule 은 ctx 가 끝날 때까지 spec 주기로 job 을 실행한다.
// 이전 실행이 끝나지 않았으면 이번 차례는 건너뛴다.
func Schedule(ctx context.Context, sc config.ScheduleConfig, job func(context.Context)) error {
	loc := time.Local
	if sc.Timezone != "" {
		l, err := time.LoadLocation(sc.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", sc.Timezone, err)
		}
		loc = l
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	id, err := c.AddFunc(sc.Cron, func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", sc.Cron, err)
	}

	c.Start()
	config.Logger.Infof("[run] scheduled %q (%s), next run at %s", sc.Cron, loc, c.Entry(id).Next.Format(time.RFC3339))

	<-ctx.Done()
	config.Logger.Info("[run] stopping scheduler")
	<-c.Stop().Done()
	return nil
}
