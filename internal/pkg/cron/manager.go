package cron

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	cfg                 config.CronConfig
	monthlyStatsJob     *job.MonthlyStatsJob
	trendingSnapshotJob *job.TrendingSnapshotJob
}

func NewCronManager(cfg config.CronConfig, monthlyStatsJob *job.MonthlyStatsJob, trendingSnapshotJob *job.TrendingSnapshotJob) *Manager {
	return &Manager{
		engine:              cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		cfg:                 cfg,
		monthlyStatsJob:     monthlyStatsJob,
		trendingSnapshotJob: trendingSnapshotJob,
	}
}

// RegisterJobs 注册定时任务，表达式为空的任务不注册
func (s *Manager) RegisterJobs() error {
	if s.cfg.MonthlyReset != "" {
		if _, err := s.engine.AddJob(s.cfg.MonthlyReset, s.monthlyStatsJob); err != nil {
			return err
		}
	}
	if s.cfg.TrendingSnapshot != "" {
		if _, err := s.engine.AddJob(s.cfg.TrendingSnapshot, s.trendingSnapshotJob); err != nil {
			return err
		}
	}
	return nil
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
