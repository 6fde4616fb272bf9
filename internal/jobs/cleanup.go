package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/obraplan/obraplan/internal/config"
	"github.com/obraplan/obraplan/internal/modules/repo"
)

// Cleanup runs the periodic maintenance jobs. Right now that is a single
// job purging expired password reset tokens.
type Cleanup struct {
	c      *cron.Cron
	resets repo.ResetTokenRepo
	log    *zap.Logger
}

func NewCleanup(cfg *config.Config, resets repo.ResetTokenRepo, log *zap.Logger) (*Cleanup, error) {
	cl := &Cleanup{
		c:      cron.New(),
		resets: resets,
		log:    log,
	}

	_, err := cl.c.AddFunc(cfg.Reset.CleanupSchedule, cl.purgeExpiredTokens)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func (cl *Cleanup) Start() {
	cl.c.Start()
}

// Stop waits for any running job to finish.
func (cl *Cleanup) Stop(ctx context.Context) {
	stopped := cl.c.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

func (cl *Cleanup) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := cl.resets.PurgeExpired(ctx, time.Now())
	if err != nil {
		cl.log.Error("failed to purge expired reset tokens", zap.Error(err))
		return
	}
	if n > 0 {
		cl.log.Info("purged expired reset tokens", zap.Int64("count", n))
	}
}
