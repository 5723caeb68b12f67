package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/application/services"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/tests/fixtures"
)

func memoryOpener(t *testing.T) opener {
	t.Helper()
	dir := t.TempDir()
	seed, err := services.EncodeDirectory(fixtures.Family())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	return func(ctx context.Context) (*di.Container, func(), error) {
		return di.InitializeContainer(ctx, &config.Config{
			Environment:  "test",
			StoreDriver:  config.DriverMemory,
			SeedFile:     seedPath,
			MembersTable: "family_members",
			ExportDir:    filepath.Join(dir, "exports"),
			LogLevel:     "error",
		})
	}
}

func execute(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPing(t *testing.T) {
	out, err := execute(t, memoryOpener(t), "ping")

	require.NoError(t, err)
	assert.Contains(t, out, "memory store reachable")
	assert.Regexp(t, `Members\s+5`, out)
}

func TestStats(t *testing.T) {
	out, err := execute(t, memoryOpener(t), "stats")

	require.NoError(t, err)
	assert.Regexp(t, `Members\s+5`, out)
	assert.Regexp(t, `Branches\s+\d`, out)
	assert.Contains(t, out, "COUNTRY")
	assert.Regexp(t, `United States\s+2\s+`, out)
	assert.Contains(t, out, "Detroit (1)")
}

func TestExport(t *testing.T) {
	open := memoryOpener(t)
	target := filepath.Join(t.TempDir(), "family.json")

	out, err := execute(t, open, "export", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 5 members")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 5)

	t.Run("round trips through import", func(t *testing.T) {
		out, err := execute(t, open, "import", target)

		require.NoError(t, err)
		assert.Contains(t, out, "valid export file with 5 members")
	})
}

func TestImport_RejectsNonArray(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"members":[]}`), 0o600))

	_, err := execute(t, memoryOpener(t), "import", file)

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeImportFormat, errors.GetAppError(err).Type)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := execute(t, memoryOpener(t), "import", filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read import file")
}

func TestToken(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_JWT_ISSUER", "hazboun-directory")

	out, err := execute(t, nil, "token", "--subject", "admin-1", "--email", "admin@example.com")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "hazboun-directory",
		Audience:  []string{auth.Audience},
	})
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.True(t, claims.HasRole(auth.RoleAdmin))
}

func TestToken_RequiresSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")

	_, err := execute(t, nil, "token", "--subject", "admin-1")

	assert.Error(t, err)
}
