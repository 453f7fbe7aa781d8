// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Core initialization, truncation, and timestamp display
package commands

import (
	"fmt"
	"time"

	"github.com/bjorgsun/companion-core/internal/config"
	"github.com/bjorgsun/companion-core/internal/core"
	"github.com/joho/godotenv"
)

// initCore loads .env, configuration, and the companion core.
func initCore() (*core.Core, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	c, err := core.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing core: %w", err)
	}
	return c, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
