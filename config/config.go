// Package config holds the settings for a test run: where the case engine and the token
// service live, how long to wait for asynchronous processing, and how to log.
//
// Settings come from built-in defaults, optionally overlaid by a YAML file, optionally
// overlaid by command line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/cafienne/engine-contract-tests/logging"
)

const (
	DefaultEngineURL        = "http://localhost:2027/"
	DefaultTokenURL         = "http://localhost:2377/token"
	DefaultIssuer           = "Cafienne Test Framework"
	DefaultRepositoryFolder = "./casemodels/bin"
	DefaultCQRSWait         = 5 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMockServerPort   = 17382
	DefaultPollAttempts     = 50
	DefaultPollInterval     = time.Second
)

type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Token      TokenConfig      `yaml:"token"`
	Repository RepositoryConfig `yaml:"repository"`
	Polling    PollingConfig    `yaml:"polling"`
	MockServer MockServerConfig `yaml:"mock_server"`
	Log        LogConfig        `yaml:"log"`
}

type EngineConfig struct {
	URL string `yaml:"url"`
	// CQRSWait is how long the engine needs to project events of a command (such as
	// StartCase or CompleteTask) into its query database.
	CQRSWait          time.Duration `yaml:"cqrs_wait"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	// CaseDebug starts new cases with the engine's debug mode switched on.
	CaseDebug bool `yaml:"case_debug"`
}

type TokenConfig struct {
	URL string `yaml:"url"`
	// Issuer must match the issuer configured in the engine.
	Issuer   string        `yaml:"issuer"`
	Validity time.Duration `yaml:"validity"`
}

type RepositoryConfig struct {
	Folder string `yaml:"folder"`
}

type PollingConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

type MockServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings that match a locally running engine and token service.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			URL:            DefaultEngineURL,
			CQRSWait:       DefaultCQRSWait,
			RequestTimeout: DefaultRequestTimeout,
		},
		Token: TokenConfig{
			URL:      DefaultTokenURL,
			Issuer:   DefaultIssuer,
			Validity: 48 * time.Hour,
		},
		Repository: RepositoryConfig{Folder: DefaultRepositoryFolder},
		Polling:    PollingConfig{MaxAttempts: DefaultPollAttempts, Interval: DefaultPollInterval},
		MockServer: MockServerConfig{Port: DefaultMockServerPort, Host: "localhost"},
		Log:        LogConfig{Level: logging.LevelInfo.String()},
	}
}

// Load reads a YAML file over the defaults. Keys that are absent from the file keep
// their default value. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving fields that the document does not mention untouched.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the settings that would otherwise only fail once tests are running.
func (c Config) Validate() error {
	var errs []error
	if err := validateURL("engine.url", c.Engine.URL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("token.url", c.Token.URL); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Engine.CQRSWait < 0 {
		errs = append(errs, errors.New("engine.cqrs_wait must not be negative"))
	}
	if c.Engine.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("engine.requests_per_second must not be negative"))
	}
	if c.Polling.MaxAttempts < 1 {
		errs = append(errs, errors.New("polling.max_attempts must be at least 1"))
	}
	if c.MockServer.Port < 0 || c.MockServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("mock_server.port %d is out of range", c.MockServer.Port))
	}
	return errors.Join(errs...)
}

func validateURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: %q is not an http(s) URL", name, value)
	}
	return nil
}

// LogLevel returns the parsed log level; Validate has already rejected unknown names.
func (c Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
