package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	iso8601 "github.com/senseyeio/duration"
)

const EnvironmentPrefix = "SUBPAR_"

// LoadDotEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// Settings is a view over the SUBPAR_ prefixed variables.
type Settings map[string]string

func GetSettings() Settings {
	settings := Settings{}

	for key, value := range GetEnvironmentVariables() {
		if strings.HasPrefix(key, EnvironmentPrefix) {
			settings[strings.TrimPrefix(key, EnvironmentPrefix)] = value
		}
	}

	return settings
}

func (s Settings) String(name string, fallback string) string {
	if value := s[name]; value != "" {
		return value
	}
	return fallback
}

func (s Settings) Int(name string, fallback int) (int, error) {
	value := s[name]
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %q", EnvironmentPrefix, name, value)
	}
	return n, nil
}

func (s Settings) Duration(name string, fallback time.Duration) (time.Duration, error) {
	value := s[name]
	if value == "" {
		return fallback, nil
	}

	d, err := ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %q", EnvironmentPrefix, name, value)
	}
	return d, nil
}

// ParseDuration accepts Go durations ("10s") and ISO-8601 durations ("PT10S").
func ParseDuration(value string) (time.Duration, error) {
	var d time.Duration
	if strings.HasPrefix(value, "P") {
		parsed, err := iso8601.ParseISO8601(value)
		if err != nil {
			return 0, err
		}

		epoch := time.Unix(0, 0).UTC()
		d = parsed.Shift(epoch).Sub(epoch)
	} else {
		var err error
		if d, err = time.ParseDuration(value); err != nil {
			return 0, err
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", value)
	}
	return d, nil
}
