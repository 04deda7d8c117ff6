package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"larose-cli/api"
	"larose-cli/storage"

	"github.com/joho/godotenv"
)

const (
	envAPIURL    = "LAROSE_API_URL"
	envTimeout   = "LAROSE_TIMEOUT_SECONDS"
	envRateLimit = "LAROSE_RATE_LIMIT"
	envTimezone  = "LAROSE_TIMEZONE"
	envAuthFile  = "LAROSE_AUTH_FILE"

	defaultTimezone = "Asia/Ho_Chi_Minh"
)

var (
	roomPageSizes     = []int{9, 18, 36, 54}
	reviewPageSizes   = []int{10, 20, 50}
	customerPageSizes = []int{10, 20, 50, 100}
	historyPageSizes  = []int{5, 10, 20}
	ledgerPageSizes   = []int{10, 20, 50}
)

type Config struct {
	APIURL             string  `json:"api_url"`
	DefaultPageSize    int     `json:"default_page_size"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
	RateLimitPerSecond float64 `json:"rate_limit_per_second"`
	Timezone           string  `json:"timezone"`
}

func defaultConfig() Config {
	return Config{
		APIURL:          api.DefaultBaseURL,
		DefaultPageSize: 18,
		TimeoutSeconds:  int(api.DefaultTimeout / time.Second),
		Timezone:        defaultTimezone,
	}
}

// loadConfig layers defaults, config.json, .env and the environment, in that order.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	conf := defaultConfig()
	if err := readConfigFile(&conf); err != nil {
		return Config{}, err
	}

	conf.APIURL = getEnvOrDefault(envAPIURL, conf.APIURL)
	conf.TimeoutSeconds = getEnvAsIntOrDefault(envTimeout, conf.TimeoutSeconds)
	conf.Timezone = getEnvOrDefault(envTimezone, conf.Timezone)
	if value := os.Getenv(envRateLimit); value != "" {
		limit, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q", envRateLimit, value)
		}
		conf.RateLimitPerSecond = limit
	}

	if conf.TimeoutSeconds <= 0 {
		conf.TimeoutSeconds = int(api.DefaultTimeout / time.Second)
	}
	if !slices.Contains(roomPageSizes, conf.DefaultPageSize) {
		conf.DefaultPageSize = 18
	}
	if _, err := time.LoadLocation(conf.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", conf.Timezone, err)
	}
	return conf, nil
}

func readConfigFile(conf *Config) error {
	path, err := storage.ConfigPath()
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("config path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(conf); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c Config) location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
