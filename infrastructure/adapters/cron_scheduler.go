package adapters

import (
	"context"
	"fmt"
	"time"
	"weaveit-pipeline/application/ports/outbound"

	"github.com/robfig/cron/v3"
)

// CronScheduler runs housekeeping jobs. A panicking job is recovered and
// logged so it cannot take the server down.
type CronScheduler struct {
	c      *cron.Cron
	logger outbound.LoggerPort
}

func NewCronScheduler(logger outbound.LoggerPort) *CronScheduler {
	cronLogger := &cronLoggerAdapter{logger: logger}
	return &CronScheduler{
		c:      cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		logger: logger,
	}
}

func (s *CronScheduler) Every(interval time.Duration, name string, job func(ctx context.Context) error) (cron.EntryID, error) {
	return s.Add(fmt.Sprintf("@every %s", interval), name, job)
}

func (s *CronScheduler) Add(spec string, name string, job func(ctx context.Context) error) (cron.EntryID, error) {
	return s.c.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil {
			s.logger.ErrorWithFields(err, "Scheduled job failed", map[string]interface{}{
				"job": name,
			})
		}
	})
}

func (s *CronScheduler) Entries() []cron.Entry {
	return s.c.Entries()
}

func (s *CronScheduler) Start() {
	s.c.Start()
}

// Stop waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	<-s.c.Stop().Done()
}

type cronLoggerAdapter struct {
	logger outbound.LoggerPort
}

func (a *cronLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.DebugWithFields("cron: "+msg, pairsToFields(keysAndValues))
}

func (a *cronLoggerAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.ErrorWithFields(err, "cron: "+msg, pairsToFields(keysAndValues))
}

func pairsToFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
