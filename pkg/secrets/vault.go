package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// VaultConfig controls loading of environment secrets (JWT key, DB password) from Vault.
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// VaultResult summarises a load.
type VaultResult struct {
	Enabled bool
	Path    string
	Loaded  int
	Skipped int
}

// SecretReader reads a logical Vault path. *api.Logical satisfies it.
type SecretReader interface {
	Read(path string) (*api.Secret, error)
}

// Setenv is swapped in tests.
var Setenv = os.Setenv

func LoadVaultConfigFromEnv() VaultConfig {
	mount := os.Getenv("VAULT_MOUNT")
	if mount == "" {
		mount = "secret"
	}
	kvVersion := 2
	if val := os.Getenv("VAULT_KV_VERSION"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			kvVersion = parsed
		}
	}
	path := os.Getenv("VAULT_PATH")
	if path == "" {
		path = "hbnb/api"
	}
	timeout := 5 * time.Second
	if val := os.Getenv("VAULT_TIMEOUT_MS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	return VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     mount,
		Path:      path,
		KVVersion: kvVersion,
		Timeout:   timeout,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
}

// NewVaultReader builds a Vault API client from cfg.
func NewVaultReader(cfg VaultConfig) (SecretReader, error) {
	apiCfg := api.DefaultConfig()
	if apiCfg.Error != nil {
		return nil, apiCfg.Error
	}
	apiCfg.Address = cfg.Addr
	if cfg.Timeout > 0 {
		apiCfg.Timeout = cfg.Timeout
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	return client.Logical(), nil
}

// ApplyVaultSecrets copies the key/value pairs stored at cfg.Path into the process environment.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	if !cfg.Enabled {
		return VaultResult{Enabled: false}, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return VaultResult{Enabled: true, Path: cfg.Path}, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_PATH)")
	}

	reader, err := NewVaultReader(cfg)
	if err != nil {
		return VaultResult{Enabled: true, Path: cfg.Path}, err
	}
	return ApplyFromReader(ctx, reader, cfg)
}

// ApplyFromReader is ApplyVaultSecrets against an existing reader.
func ApplyFromReader(ctx context.Context, reader SecretReader, cfg VaultConfig) (VaultResult, error) {
	result := VaultResult{Enabled: true, Path: cfg.Path}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	logicalPath, err := buildLogicalPath(cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return result, err
	}

	secret, err := reader.Read(logicalPath)
	if err != nil {
		return result, fmt.Errorf("vault read %s: %w", logicalPath, err)
	}
	if secret == nil {
		return result, fmt.Errorf("vault path %s not found", logicalPath)
	}

	data, err := extractVaultData(secret.Data, cfg.KVVersion)
	if err != nil {
		return result, err
	}

	for key, value := range data {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := Setenv(key, stringifyVaultValue(value)); err != nil {
			return result, err
		}
		result.Loaded++
	}
	return result, nil
}

func buildLogicalPath(mount, path string, kvVersion int) (string, error) {
	mount = strings.Trim(mount, "/")
	path = strings.Trim(path, "/")
	if mount == "" || path == "" {
		return "", errors.New("vault mount and path must be set")
	}
	if kvVersion == 1 {
		return mount + "/" + path, nil
	}
	return mount + "/data/" + path, nil
}

func extractVaultData(data map[string]interface{}, kvVersion int) (map[string]interface{}, error) {
	if kvVersion == 1 {
		if data == nil {
			return nil, errors.New("vault response missing data for KV v1")
		}
		return data, nil
	}
	if inner, ok := data["data"].(map[string]interface{}); ok {
		return inner, nil
	}
	return nil, errors.New("vault response missing data for KV v2")
}

func stringifyVaultValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
