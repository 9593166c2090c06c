package schedule

// 巡检调度器：按固定间隔在进程内跑一次失联派生。
// 巡检是幂等的，所以间隔抖动和错过的 tick 都无所谓。

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"Lifeline/config"
	"Lifeline/internal/service"
	"Lifeline/pkg/logger"
)

var (
	schedulerOnce sync.Once
	schedulerInst *SweepScheduler
)

type SweepScheduler struct {
	logger        *zap.Logger
	sweepRunning  bool
	sweepMu       sync.Mutex
	lastSweepTime time.Time
}

func GetScheduler() *SweepScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &SweepScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// Run 阻塞运行巡检循环直到 ctx 取消。启动时立即跑一轮，
// 之后按 SWEEP_INTERVAL_SECONDS 的节奏继续。
func (s *SweepScheduler) Run(ctx context.Context) {
	interval := time.Duration(config.Cfg.SweepIntervalSeconds) * time.Second

	s.logger.Info("Starting sweep scheduler",
		zap.Duration("interval", interval),
	)

	s.RunOnce(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopped")
			return
		case now := <-ticker.C:
			s.RunOnce(now)
		}
	}
}

// RunOnce 执行一轮巡检。上一轮还没结束时直接跳过（手动触发和 tick 可能重叠）。
func (s *SweepScheduler) RunOnce(now time.Time) {
	s.sweepMu.Lock()
	if s.sweepRunning {
		s.sweepMu.Unlock()
		s.logger.Debug("Sweep already running, skipping")
		return
	}
	s.sweepRunning = true
	s.sweepMu.Unlock()

	defer func() {
		s.sweepMu.Lock()
		s.sweepRunning = false
		s.sweepMu.Unlock()
	}()

	startTime := time.Now()
	s.lastSweepTime = startTime

	newMissing := service.Deriver().Sweep(now)

	duration := time.Since(startTime)

	if len(newMissing) > 0 {
		s.logger.Info("Sweep completed with new missing participants",
			zap.Duration("duration", duration),
			zap.Int("new_missing", len(newMissing)),
			zap.Strings("participant_ids", newMissing),
		)
		return
	}

	s.logger.Debug("Sweep completed",
		zap.Duration("duration", duration),
	)
}

// LastSweepTime 最近一次巡检的启动时间，健康检查用
func (s *SweepScheduler) LastSweepTime() time.Time {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()
	return s.lastSweepTime
}
