package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags listed
// here are looked at; see flagx.FilterArgs. Invalid values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-driver", "-s", "-o", "-l", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (sqlite|pgx)")
	autosave := fs.Int("s", int(cfg.AutoSaveDelay.Seconds()), "autosave quiet period (in seconds)")
	otp := fs.Int("o", int(cfg.OtpLifetime.Minutes()), "password reset code lifetime (in minutes)")
	fs.StringVar(&cfg.LogBackend, "l", cfg.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// whole-unit flags must not truncate finer values loaded from JSON
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.AutoSaveDelay = time.Duration(*autosave) * time.Second
		case "o":
			cfg.OtpLifetime = time.Duration(*otp) * time.Minute
		}
	})
}
