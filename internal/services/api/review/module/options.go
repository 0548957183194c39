package module

import "reviewnexus/internal/platform/config"

// Options holds configuration settings for the review module
type Options struct {
	TagLimit        int
	SourceURLLimit  int
	CronSecret      string
	SchedulerHeader string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("REVIEW_")
	return Options{
		TagLimit:        rf.MayInt("TAG_LIMIT", 4),
		SourceURLLimit:  rf.MayInt("SOURCE_URL_LIMIT", 20),
		CronSecret:      cfg.MayString("CRON_SECRET", ""),
		SchedulerHeader: cfg.MayString("SCHEDULER_HEADER", "X-Trusted-Scheduler"),
	}
}
