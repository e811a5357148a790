package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Watch polls the config file's mtime and reloads it into the store on
// change, so operators can retune thresholds and cadence without a restart.
// A file that fails to load or validate is ignored and the previous
// configuration stays in effect.
func Watch(ctx context.Context, path string, store *Store, every time.Duration) {
	if every <= 0 {
		every = 5 * time.Second
	}

	var lastMod time.Time
	if fi, err := os.Stat(path); err == nil {
		lastMod = fi.ModTime()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fi, err := os.Stat(path)
			if err != nil {
				continue
			}
			if !fi.ModTime().After(lastMod) {
				continue
			}
			lastMod = fi.ModTime()

			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Str("config", path).Msg("config reload rejected, keeping previous")
				continue
			}
			if err := store.Replace(cfg); err != nil {
				log.Warn().Err(err).Str("config", path).Msg("config reload rejected, keeping previous")
				continue
			}
			log.Info().Str("config", path).Msg("config reloaded")
		}
	}
}
