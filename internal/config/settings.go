package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// ErrInvalidSettings marks configuration that was read successfully but holds
// out-of-range values, as opposed to an unreadable or malformed source.
var ErrInvalidSettings = errors.New(ErrSettingsInvalid)

// Settings holds the runtime configuration shared by the CLI and the HTTP service.
type Settings struct {
	Port   string `mapstructure:"port"`
	Locale string `mapstructure:"locale"`
	// Year is the implicit decoding year. Zero means "current year".
	Year  int  `mapstructure:"year"`
	Debug bool `mapstructure:"debug"`
}

// LoadSettings reads the optional configuration file, then environment
// variables (COMPACTDATES_*), then defaults. An explicit path must exist;
// the default search locations may be empty.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType(ConfigFileType)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLocale, DefaultLanguage)
	v.SetDefault(KeyYear, 0)
	v.SetDefault(KeyDebug, false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
		slog.Debug(MsgConfigMissing, LogKeyComponent, CompConfig)
	} else {
		slog.Debug(MsgConfigLoaded,
			LogKeyComponent, CompConfig,
			LogKeyFile, v.ConfigFileUsed(),
		)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return &s, nil
}

// Validate checks the port and year ranges.
func (s *Settings) Validate() error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	if s.Year < 0 || s.Year > 9999 {
		return errors.New(ErrYearRange)
	}
	return nil
}

// ValidatePort ensures the port string is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
