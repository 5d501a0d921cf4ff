package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
	"gorm.io/gorm"
)

const defaultBacklogWarn = 1000

type OutboxBacklogJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repository  outboxBacklogRepo
	Metrics     *metrics.OutboxMetrics
	MaxAttempts int
	WarnAbove   int64
}

type outboxBacklogRepo interface {
	Pending(tx *gorm.DB, maxAttempts int) (int64, error)
	Dead(tx *gorm.DB, maxAttempts int) (int64, error)
}

// NewOutboxBacklogJob samples how many events are waiting for the relay.
func NewOutboxBacklogJob(params OutboxBacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = outboxMaxAttempts
	}
	warn := params.WarnAbove
	if warn <= 0 {
		warn = defaultBacklogWarn
	}
	return &outboxBacklogJob{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repository,
		metrics:     params.Metrics,
		maxAttempts: maxAttempts,
		warnAbove:   warn,
	}, nil
}

type outboxBacklogJob struct {
	logg        *logger.Logger
	db          txRunner
	repo        outboxBacklogRepo
	metrics     *metrics.OutboxMetrics
	maxAttempts int
	warnAbove   int64
}

func (j *outboxBacklogJob) Name() string { return "outbox-backlog" }

func (j *outboxBacklogJob) Run(ctx context.Context) error {
	var pending, dead int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if pending, err = j.repo.Pending(tx, j.maxAttempts); err != nil {
			return err
		}
		dead, err = j.repo.Dead(tx, j.maxAttempts)
		return err
	})
	if err != nil {
		return fmt.Errorf("outbox backlog: %w", err)
	}
	j.metrics.SetBacklog(pending, dead)

	logCtx := j.logg.WithFields(ctx, map[string]any{"pending": pending, "dead": dead})
	if pending > j.warnAbove || dead > 0 {
		j.logg.Warn(logCtx, "cron.outbox_backlog_high")
		return nil
	}
	j.logg.Info(logCtx, "cron.outbox_backlog_ok")
	return nil
}
