// ABOUTME: Centralized configuration for the Bjorgsun-26 companion core
// ABOUTME: Loads paths, owner identity, and API settings from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// DefaultCacheHistory is the number of turns kept at rest; memory headroom is 3x this.
const DefaultCacheHistory = 26000

// Config holds all configuration for the companion core
type Config struct {
	// Paths
	DataRoot           string
	MemoryPath         string
	LegacyMemoryPath   string
	ExportsDir         string
	UsersDir           string
	PreferencesLogPath string
	IssueLogPath       string

	// Memory settings
	CacheHistory int

	// Owner identity
	OwnerHandle      string
	OwnerName        string
	OwnerLastCode    string
	OwnerSafeAliases []string
	OwnerDiscordID   string

	// PrivateMode is informational only. Persistence defaults ON even when
	// this is set; only an explicit SetPersistence call flips it. The owner
	// wants "he always remembers" regardless of the privacy toggle.
	PrivateMode bool

	// OpenAI settings (prompt builder)
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dataRoot := os.Getenv("BJORGSUN_DATA")
	if dataRoot == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = xdg.DataHome
		}
		dataRoot = filepath.Join(dataHome, "bjorgsun")
	}

	cfg := &Config{
		DataRoot:           dataRoot,
		MemoryPath:         getEnv("MEMORY_PATH", filepath.Join(dataRoot, "memory.json")),
		LegacyMemoryPath:   getEnv("MEMORY_LEGACY_PATH", filepath.Join(dataRoot, "memory_legacy.json")),
		ExportsDir:         filepath.Join(dataRoot, "memory_exports"),
		UsersDir:           filepath.Join(dataRoot, "users"),
		PreferencesLogPath: filepath.Join(dataRoot, "preferences_log.json"),
		IssueLogPath:       filepath.Join(dataRoot, "logs", "Phoenix-15_FIXME_log.log"),
		CacheHistory:       getEnvInt("CACHE_HISTORY", DefaultCacheHistory),
		OwnerHandle:        getEnv("OWNER_HANDLE", "owner"),
		OwnerName:          os.Getenv("OWNER_NAME"),
		OwnerLastCode:      os.Getenv("OWNER_LAST_CODE"),
		OwnerSafeAliases:   splitList(os.Getenv("OWNER_SAFE_ALIASES")),
		OwnerDiscordID:     os.Getenv("OWNER_DISCORD_ID"),
		PrivateMode:        getEnvBool("PRIVATE_MODE", false),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		ChatModel:          getEnv("BJORGSUN_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:            getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:         getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.CacheHistory <= 0 {
		return fmt.Errorf("CACHE_HISTORY must be positive, got %d", c.CacheHistory)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.OwnerHandle == "" {
		return fmt.Errorf("OWNER_HANDLE must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
