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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
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
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
bindAddr: "127.0.0.1"
databasePath: ".tally-test"
ledgerRpcUrl: "http://localhost:7545"
contractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
senderAddress: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
apiPort: 8081
metricsPort: 8088
gasPrice: 1000000000
shutdownTimeout: "15s"
ledgerCallTimeout: "10s"
electionPollInterval: "30s"
tracing: true
tracingStdout: true
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-tally.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	expected := &Config{
		BindAddr:             "127.0.0.1",
		DatabasePath:         ".tally-test",
		LedgerRpcUrl:         "http://localhost:7545",
		ContractAddress:      "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		SenderAddress:        "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		ApiPort:              8081,
		MetricsPort:          8088,
		GasPrice:             1000000000,
		ShutdownTimeout:      "15s",
		LedgerCallTimeout:    "10s",
		ElectionPollInterval: "30s",
		Tracing:              true,
		TracingStdout:        true,
	}

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Fatalf(
			"config mismatch\n  got:  %+v\n  want: %+v",
			cfg,
			expected,
		)
	}
}

func TestLoad_PartialOverlayKeepsDefaults(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
apiPort: 9999
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-tally.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ApiPort != 9999 {
		t.Fatalf("expected apiPort 9999, got %d", cfg.ApiPort)
	}
	if cfg.DatabasePath != ".tally" {
		t.Fatalf("expected default databasePath, got %q", cfg.DatabasePath)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Fatalf(
			"expected default shutdownTimeout, got %q",
			cfg.ShutdownTimeout,
		)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
ledgerRpcUrl: "http://localhost:7545"
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-tally.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	t.Setenv("TALLY_LEDGER_RPC_URL", "http://geth:8545")
	t.Setenv("TALLY_GAS_PRICE", "42")

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.LedgerRpcUrl != "http://geth:8545" {
		t.Fatalf("expected env ledgerRpcUrl, got %q", cfg.LedgerRpcUrl)
	}
	if cfg.GasPrice != 42 {
		t.Fatalf("expected env gasPrice, got %d", cfg.GasPrice)
	}
}

func TestLoad_MissingFileError(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig("/nonexistent/tally.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestContextRoundTrip(t *testing.T) {
	resetGlobalConfig()
	cfg := GetConfig()
	ctx := WithContext(t.Context(), cfg)
	got := FromContext(ctx)
	if got != cfg {
		t.Fatal("expected config from context to match")
	}
	if FromContext(t.Context()) != nil {
		t.Fatal("expected nil config from empty context")
	}
}
