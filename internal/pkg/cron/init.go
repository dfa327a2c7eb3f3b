package cron

import log "log/slog"

func InitCron(mgr *Manager, enable bool) error {
	if !enable {
		log.Info("Cron Jobs disabled")
		return nil
	}
	log.Info("Cron Jobs starting...")
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
