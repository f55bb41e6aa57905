package config

import "time"

const (
	defaultAddress     = "127.0.0.1:7878"
	defaultWorkers     = 5
	defaultRoot        = "."
	defaultSleepDelay  = 5 * time.Second
	defaultReadTimeout = 10 * time.Second
)
