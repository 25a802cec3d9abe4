package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "major"
	configType = "toml"
	envPrefix  = "MAJOR"

	DefaultFileName = configName + "." + configType
	DefaultEnvFile  = ".env"

	configDirMode  = 0o700
	configFileMode = 0o600
)

var ErrConfigExists = errors.New("config file already exists")

type Config struct {
	Accounts AccountsConfig `mapstructure:"accounts"`
	Tokens   TokensConfig   `mapstructure:"tokens"`
	API      APIConfig      `mapstructure:"api"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Pacing   PacingConfig   `mapstructure:"pacing"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
}

type AccountsConfig struct {
	Path string `mapstructure:"path"`
}

type TokensConfig struct {
	Path string `mapstructure:"path"`
}

type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	SquadID         string        `mapstructure:"squad_id"`
	TaskTitlesURL   string        `mapstructure:"task_titles_url"`
	DurovPayloadURL string        `mapstructure:"durov_payload_url"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type RetryConfig struct {
	// MaxGatewayAttempts of zero retries gateway timeouts forever.
	MaxGatewayAttempts int           `mapstructure:"max_gateway_attempts"`
	GatewayBackoff     time.Duration `mapstructure:"gateway_backoff"`
	CooldownMargin     time.Duration `mapstructure:"cooldown_margin"`
}

type PacingConfig struct {
	Auth    time.Duration `mapstructure:"auth"`
	Refresh time.Duration `mapstructure:"refresh"`
	Probe   time.Duration `mapstructure:"probe"`
	Action  time.Duration `mapstructure:"action"`
	Visit   time.Duration `mapstructure:"visit"`
}

type ScheduleConfig struct {
	Refresh string `mapstructure:"refresh"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Timestamps bool   `mapstructure:"timestamps"`
}

func Default() Config {
	return Config{
		Accounts: AccountsConfig{Path: "urls.txt"},
		Tokens:   TokensConfig{Path: "tokens.json"},
		API: APIConfig{
			BaseURL:         "https://major.bot",
			SquadID:         "2416499148",
			TaskTitlesURL:   "https://raw.githubusercontent.com/chitoz1300/REXBOT/main/Major.txt",
			DurovPayloadURL: "https://raw.githubusercontent.com/chitoz1300/REXBOT/main/Pavelmajor.json",
			Timeout:         30 * time.Second,
		},
		Retry: RetryConfig{
			GatewayBackoff: 5 * time.Second,
			CooldownMargin: 5 * time.Minute,
		},
		Pacing: PacingConfig{
			Auth:    2 * time.Second,
			Refresh: 4 * time.Second,
			Probe:   2 * time.Second,
			Action:  2 * time.Second,
			Visit:   3 * time.Second,
		},
		Schedule: ScheduleConfig{Refresh: "@every 4h"},
		Log:      LogConfig{Level: "info", Timestamps: true},
	}
}

type LoadOptions struct {
	// ConfigFile overrides the search for major.toml.
	ConfigFile string
	// EnvFile is loaded into the process environment when it exists.
	EnvFile string
	// SearchPaths replaces the default search directories.
	SearchPaths []string
}

// Load merges defaults, the first major.toml found, a dotenv file and
// MAJOR_* environment variables, in increasing order of precedence. The
// returned string is the config file used, empty when none was found.
func Load(opts LoadOptions) (Config, string, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, "", fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = DefaultSearchPaths()
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}

	return cfg, v.ConfigFileUsed(), nil
}

func DefaultSearchPaths() []string {
	paths := []string{"."}
	if dir, err := UserConfigDir(); err == nil {
		paths = append(paths, dir)
	}
	return paths
}

func UserConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configName), nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Accounts.Path) == "" {
		errs = append(errs, errors.New("accounts.path is empty"))
	}
	if strings.TrimSpace(c.Tokens.Path) == "" {
		errs = append(errs, errors.New("tokens.path is empty"))
	}
	if c.Retry.MaxGatewayAttempts < 0 {
		errs = append(errs, errors.New("retry.max_gateway_attempts must not be negative"))
	}
	if strings.TrimSpace(c.Schedule.Refresh) == "" {
		errs = append(errs, errors.New("schedule.refresh is empty"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("accounts.path", cfg.Accounts.Path)
	v.SetDefault("tokens.path", cfg.Tokens.Path)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.squad_id", cfg.API.SquadID)
	v.SetDefault("api.task_titles_url", cfg.API.TaskTitlesURL)
	v.SetDefault("api.durov_payload_url", cfg.API.DurovPayloadURL)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("retry.max_gateway_attempts", cfg.Retry.MaxGatewayAttempts)
	v.SetDefault("retry.gateway_backoff", cfg.Retry.GatewayBackoff)
	v.SetDefault("retry.cooldown_margin", cfg.Retry.CooldownMargin)
	v.SetDefault("pacing.auth", cfg.Pacing.Auth)
	v.SetDefault("pacing.refresh", cfg.Pacing.Refresh)
	v.SetDefault("pacing.probe", cfg.Pacing.Probe)
	v.SetDefault("pacing.action", cfg.Pacing.Action)
	v.SetDefault("pacing.visit", cfg.Pacing.Visit)
	v.SetDefault("schedule.refresh", cfg.Schedule.Refresh)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.timestamps", cfg.Log.Timestamps)
}

type fileSchema struct {
	Accounts fileAccounts `toml:"accounts"`
	Tokens   fileTokens   `toml:"tokens"`
	API      fileAPI      `toml:"api"`
	Retry    fileRetry    `toml:"retry"`
	Pacing   filePacing   `toml:"pacing"`
	Schedule fileSchedule `toml:"schedule"`
	Log      fileLog      `toml:"log"`
}

type fileAccounts struct {
	Path string `toml:"path"`
}

type fileTokens struct {
	Path string `toml:"path"`
}

type fileAPI struct {
	BaseURL         string `toml:"base_url"`
	SquadID         string `toml:"squad_id"`
	TaskTitlesURL   string `toml:"task_titles_url"`
	DurovPayloadURL string `toml:"durov_payload_url"`
	UserAgent       string `toml:"user_agent,omitempty"`
	Timeout         string `toml:"timeout"`
}

type fileRetry struct {
	MaxGatewayAttempts int    `toml:"max_gateway_attempts"`
	GatewayBackoff     string `toml:"gateway_backoff"`
	CooldownMargin     string `toml:"cooldown_margin"`
}

type filePacing struct {
	Auth    string `toml:"auth"`
	Refresh string `toml:"refresh"`
	Probe   string `toml:"probe"`
	Action  string `toml:"action"`
	Visit   string `toml:"visit"`
}

type fileSchedule struct {
	Refresh string `toml:"refresh"`
}

type fileLog struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Accounts: fileAccounts{Path: cfg.Accounts.Path},
		Tokens:   fileTokens{Path: cfg.Tokens.Path},
		API: fileAPI{
			BaseURL:         cfg.API.BaseURL,
			SquadID:         cfg.API.SquadID,
			TaskTitlesURL:   cfg.API.TaskTitlesURL,
			DurovPayloadURL: cfg.API.DurovPayloadURL,
			UserAgent:       cfg.API.UserAgent,
			Timeout:         cfg.API.Timeout.String(),
		},
		Retry: fileRetry{
			MaxGatewayAttempts: cfg.Retry.MaxGatewayAttempts,
			GatewayBackoff:     cfg.Retry.GatewayBackoff.String(),
			CooldownMargin:     cfg.Retry.CooldownMargin.String(),
		},
		Pacing: filePacing{
			Auth:    cfg.Pacing.Auth.String(),
			Refresh: cfg.Pacing.Refresh.String(),
			Probe:   cfg.Pacing.Probe.String(),
			Action:  cfg.Pacing.Action.String(),
			Visit:   cfg.Pacing.Visit.String(),
		},
		Schedule: fileSchedule{Refresh: cfg.Schedule.Refresh},
		Log:      fileLog{Level: cfg.Log.Level, Timestamps: cfg.Log.Timestamps},
	}
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	encoded, err := toml.Marshal(toSchema(Default()))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), ".major-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}
