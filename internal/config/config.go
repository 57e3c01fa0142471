package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken string
	DatabaseURL   string
	LogLevel      string

	APIAddr  string
	APIToken string

	AdminUsername string
	AdminPassword string
	AdminChatID   int64

	Policy Policy
}

// Policy holds the organization rules the accounting engine runs with.
type Policy struct {
	Timezone     string        `yaml:"timezone"`
	WorkdayHours float64       `yaml:"workday_hours"`
	Leave        LeaveDefaults `yaml:"leave_defaults"`
	Calendar     struct {
		GoodFriday bool `yaml:"good_friday"`
	} `yaml:"calendar"`
}

type LeaveDefaults struct {
	VacationDays float64 `yaml:"vacation_days"`
	CarryOver    float64 `yaml:"carry_over"`
	SickDays     int     `yaml:"sick_days"`
}

// DefaultPolicy is used when no policy file is configured.
func DefaultPolicy() Policy {
	return Policy{
		Timezone:     "Europe/Prague",
		WorkdayHours: 8,
		Leave: LeaveDefaults{
			VacationDays: 20,
			CarryOver:    0,
			SickDays:     5,
		},
	}
}

// Location resolves the policy timezone.
func (p Policy) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// WorkdaySeconds is the expected length of one workday.
func (p Policy) WorkdaySeconds() int64 {
	return int64(p.WorkdayHours * 3600)
}

var instance *Config
var once sync.Once

// GetConfig loads the configuration once and exits the process on failure.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Infof("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading config: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the environment and the optional policy file.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "dochazka.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		APIAddr:       getEnv("API_ADDR", ""),
		APIToken:      getEnv("API_TOKEN", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminChatID:   getEnvAsInt("ADMIN_CHAT_ID", 0),
		Policy:        DefaultPolicy(),
	}

	if path := getEnv("POLICY_FILE", ""); path != "" {
		policy, err := LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}

	if cfg.APIAddr != "" && cfg.APIToken == "" {
		return nil, fmt.Errorf("API_TOKEN is required when API_ADDR is set")
	}

	return cfg, nil
}

// LoadPolicy reads a YAML policy file. ${VAR} placeholders are replaced from the environment
// and fields missing from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("error reading policy file: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (Policy, error) {
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal([]byte(content), &policy); err != nil {
		return Policy{}, fmt.Errorf("error parsing policy: %w", err)
	}

	if _, err := policy.Location(); err != nil {
		return Policy{}, fmt.Errorf("invalid timezone %q: %w", policy.Timezone, err)
	}
	if policy.WorkdayHours <= 0 || policy.WorkdayHours > 24 {
		return Policy{}, fmt.Errorf("workday_hours must be within (0, 24], got %v", policy.WorkdayHours)
	}
	if policy.Leave.VacationDays < 0 || policy.Leave.SickDays < 0 {
		return Policy{}, fmt.Errorf("leave defaults must not be negative")
	}

	return policy, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
