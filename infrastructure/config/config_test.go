package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_SupabaseRequiresCredentials(t *testing.T) {
	t.Setenv("STORE_DRIVER", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("VITE_SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestLoadConfig_ViteFallbacks(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("VITE_SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "anon")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DriverSupabase, cfg.StoreDriver)
	assert.Equal(t, "https://example.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "anon", cfg.SupabaseAnonKey)
	assert.Equal(t, "family_members", cfg.MembersTable)
}

func TestLoadConfig_Memory(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hazboun.org, http://localhost:5173,")
	t.Setenv("MAX_GENERATION", "12")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, ":9090", cfg.ServerAddress())
	assert.Equal(t, []string{"https://hazboun.org", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 12, cfg.MaxGeneration)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.AdminAuthEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"unknown driver", Config{StoreDriver: "mongo", MembersTable: "t"}, "unknown STORE_DRIVER"},
		{"postgres without dsn", Config{StoreDriver: DriverPostgres, MembersTable: "t"}, "DATABASE_URL"},
		{"inverted bounds", Config{StoreDriver: DriverMemory, MembersTable: "t", MinGeneration: 5, MaxGeneration: 2}, "MAX_GENERATION"},
		{"production needs secret", Config{StoreDriver: DriverMemory, MembersTable: "t", Environment: "production"}, "ADMIN_JWT_SECRET"},
		{"ok", Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", MembersTable: "t"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
