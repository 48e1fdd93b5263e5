// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "tally.config"

const (
	DefaultShutdownTimeout      = "30s"
	DefaultLedgerCallTimeout    = "30s"
	DefaultElectionPollInterval = "1m"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	BindAddr             string `yaml:"bindAddr"                                                 split_words:"true"`
	DatabasePath         string `yaml:"databasePath"                                             split_words:"true"`
	LedgerRpcUrl         string `yaml:"ledgerRpcUrl"         envconfig:"TALLY_LEDGER_RPC_URL"`
	ContractAddress      string `yaml:"contractAddress"                                          split_words:"true"`
	SenderAddress        string `yaml:"senderAddress"                                            split_words:"true"`
	ShutdownTimeout      string `yaml:"shutdownTimeout"                                          split_words:"true"`
	LedgerCallTimeout    string `yaml:"ledgerCallTimeout"    envconfig:"TALLY_LEDGER_CALL_TIMEOUT"`
	ElectionPollInterval string `yaml:"electionPollInterval"                                     split_words:"true"`
	GasPrice             int64  `yaml:"gasPrice"             envconfig:"TALLY_GAS_PRICE"`
	ApiPort              uint   `yaml:"apiPort"              envconfig:"port"`
	MetricsPort          uint   `yaml:"metricsPort"                                              split_words:"true"`
	Tracing              bool   `yaml:"tracing"`
	TracingStdout        bool   `yaml:"tracingStdout"                                            split_words:"true"`
}

var globalConfig = &Config{
	BindAddr:             "0.0.0.0",
	DatabasePath:         ".tally",
	LedgerRpcUrl:         "http://localhost:8545",
	ContractAddress:      "",
	SenderAddress:        "",
	ApiPort:              8080,
	MetricsPort:          12798,
	GasPrice:             0,
	ShutdownTimeout:      DefaultShutdownTimeout,
	LedgerCallTimeout:    DefaultLedgerCallTimeout,
	ElectionPollInterval: DefaultElectionPollInterval,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.tally/tally.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".tally", "tally.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/tally/tally.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/tally/tally.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Overlay config values onto existing defaults
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process environment variables
	err := envconfig.Process("tally", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
