package module

import (
	"time"

	"micdrop/internal/platform/config"
)

// Options holds configuration settings for the ingest module
type Options struct {
	Interval    time.Duration
	Cities      []string
	RadiusMiles int
	WindowDays  int
	MessageCap  int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	inf := cfg.Prefix("INGEST_")
	return Options{
		Interval:    inf.MayDuration("INTERVAL", 10*time.Minute),
		Cities:      inf.MayList("CITIES", []string{"Austin"}),
		RadiusMiles: inf.MayInt("RADIUS_MILES", 25),
		WindowDays:  inf.MayInt("WINDOW_DAYS", 30),
		MessageCap:  inf.MayInt("MESSAGE_CAP", 500),
	}
}
