package module

import "micdrop/internal/platform/config"

// Options holds configuration settings for the listings module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	lf := cfg.Prefix("CORE_LISTINGS_")
	return Options{
		HardLimit: lf.MayInt("HARD_LIMIT", 500),
	}
}
