package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDataDir          = "data"
	DefaultPort             = "8080"
	DefaultLogLevel         = "info"
	DefaultJournalRetention = 30 * 24 * time.Hour

	ImageListFile = "images.env"
	BalancesFile  = "balances.json"
	TokenFile     = "token.env"
	JournalFile   = "journal.db"
)

// ErrMissingToken is returned when no bot token could be resolved.
var ErrMissingToken = errors.New("BOT_TOKEN not set and token.env is missing or empty")

// Config holds everything the bot needs before the core is constructed.
type Config struct {
	DataDir          string
	Token            string
	Port             string
	DatabasePath     string
	LogLevel         string
	JournalRetention time.Duration
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv resolves the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load resolves the configuration once. Order per value: environment,
// then token.env in the data directory (token only), then the default.
func Load(lookup LookupFunc) (Config, error) {
	cfg := Config{
		DataDir:          getenv(lookup, "YURCOIN_DATA_DIR", DefaultDataDir),
		Port:             getenv(lookup, "PORT", DefaultPort),
		LogLevel:         strings.ToLower(getenv(lookup, "LOG_LEVEL", DefaultLogLevel)),
		JournalRetention: DefaultJournalRetention,
	}
	cfg.DatabasePath = getenv(lookup, "DATABASE_PATH", cfg.Path(JournalFile))

	if raw := getenv(lookup, "JOURNAL_RETENTION_DAYS", ""); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("invalid JOURNAL_RETENTION_DAYS %q", raw)
		}
		cfg.JournalRetention = time.Duration(days) * 24 * time.Hour
	}

	token, err := resolveToken(lookup, cfg.Path(TokenFile))
	if err != nil {
		return Config{}, err
	}
	cfg.Token = token

	return cfg, nil
}

// Path joins a file name onto the data directory.
func (c Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

func resolveToken(lookup LookupFunc, tokenPath string) (string, error) {
	for _, key := range []string{"BOT_TOKEN", "TELEGRAM_BOT_TOKEN"} {
		if v := getenv(lookup, key, ""); v != "" {
			return v, nil
		}
	}

	// token.env is either a dotenv file or a bare token on its first line
	if vars, err := godotenv.Read(tokenPath); err == nil {
		if v := strings.TrimSpace(vars["BOT_TOKEN"]); v != "" {
			return v, nil
		}
	}

	f, err := os.Open(tokenPath)
	if err != nil {
		return "", ErrMissingToken
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.Contains(line, "=") {
			return line, nil
		}
	}

	return "", ErrMissingToken
}

func getenv(lookup LookupFunc, key, fallback string) string {
	if lookup == nil {
		return fallback
	}
	if v, ok := lookup(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}
