/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type TestConfig struct {
	// BaseURL is the service under test, empty selects the fake.
	BaseURL         string
	RequestTimeout  time.Duration
	TestTimeout     time.Duration
	SkipIntegration bool
	StrictPatch     bool
	ValidateSchema  bool
	LogRequests     bool
	LogResponses    bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	requestTimeout, err := getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	testTimeout, err := getDurationWithDefault("TEST_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	config := &TestConfig{
		BaseURL:         os.Getenv("API_BASE_URL"),
		RequestTimeout:  requestTimeout,
		TestTimeout:     testTimeout,
		SkipIntegration: getBoolWithDefault("SKIP_INTEGRATION", false),
		StrictPatch:     getBoolWithDefault("STRICT_PATCH", false),
		ValidateSchema:  getBoolWithDefault("VALIDATE_SCHEMA", true),
		LogRequests:     getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:    getBoolWithDefault("LOG_RESPONSES", false),
	}

	return config, nil
}

// UseFake reports whether the suites should start the in-memory service.
func (c *TestConfig) UseFake() bool {
	return c.BaseURL == ""
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}

	return duration, nil
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func loadEnvFile() {
	envPaths := []string{
		"../../.env",    // From test/api/suites directory
		"../../../.env", // Repository root, from test/api/suites
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}
