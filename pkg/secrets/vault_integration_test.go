//go:build integration

package secrets

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/require"
)

func TestVaultSecretsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	addr := os.Getenv("TEST_VAULT_ADDR")
	token := os.Getenv("TEST_VAULT_TOKEN")
	if addr == "" || token == "" {
		t.Skip("Vault integration test requires TEST_VAULT_ADDR/TEST_VAULT_TOKEN")
	}

	client, err := api.NewClient(&api.Config{Address: addr})
	require.NoError(t, err)
	client.SetToken(token)

	path := fmt.Sprintf("hbnb/tests/%d", time.Now().UnixNano())
	_, err = client.Logical().Write("secret/data/"+path, map[string]interface{}{
		"data": map[string]interface{}{
			"JWT_SECRET_KEY": "vault-test-jwt",
			"DB_PASSWORD":    "vault-test-db",
		},
	})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DB_PASSWORD", "")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     token,
		Mount:     "secret",
		Path:      path,
		KVVersion: 2,
		Timeout:   3 * time.Second,
		Overwrite: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Loaded)
	require.Equal(t, "vault-test-jwt", os.Getenv("JWT_SECRET_KEY"))
	require.Equal(t, "vault-test-db", os.Getenv("DB_PASSWORD"))
}
