package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nutrio/nutrio/internal/daemon"
	"github.com/nutrio/nutrio/internal/domain"
	"github.com/nutrio/nutrio/internal/logger"
)

// openDaemon wires the engine for a one-shot command. Logs go to stderr so
// they never mix with command output.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, "console")
	if !verbose {
		log = log.Level(zerolog.WarnLevel)
	}
	return daemon.NewWithConfig(cfg, log)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// progressBar renders pct (0-100) as a fixed-width bar.
func progressBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func printDisplay(w io.Writer, d domain.Display) {
	fmt.Fprintf(w, "Level %d %s %s (%s)\n", d.Level, d.LevelEmoji, d.LevelTitle, d.LevelTier)
	fmt.Fprintf(w, "  %s %d/%d XP (%.1f%%)\n", progressBar(d.ProgressPct, 20), d.CurrentXP, d.XPForNextLevel, d.ProgressPct)
	fmt.Fprintf(w, "  Total XP: %d\n", d.TotalXP)
}
