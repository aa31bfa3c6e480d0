package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "k")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Policy.AllowDeleteAnyStatus)
	assert.True(t, cfg.Policy.ResetStatusOnEdit)
	assert.False(t, cfg.Policy.StrictTransitions)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nDB_DRIVER=memory\nPORT=9000\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("POLICY_ALLOW_DELETE_ANY_STATUS", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "9100", cfg.App.Port)
	assert.True(t, cfg.Policy.AllowDeleteAnyStatus)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			JWT:      JWTConfig{Secret: "k", AccessTTLMin: 1, RefreshTTLHours: 1},
			Upload:   UploadConfig{Driver: UploadLocal},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown db driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: true},
		{name: "unknown upload driver", mutate: func(c *Config) { c.Upload.Driver = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Upload.Driver = UploadS3 }, wantErr: true},
		{name: "s3 with bucket", mutate: func(c *Config) { c.Upload.Driver = UploadS3; c.S3.Bucket = "img" }},
		{name: "zero ttl", mutate: func(c *Config) { c.JWT.AccessTTLMin = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStruct_UsesJSONNames(t *testing.T) {
	type payload struct {
		Email string  `json:"email" validate:"required,email"`
		Price float64 `json:"price" validate:"gt=0"`
	}

	errs := ValidateStruct(payload{Email: "nope", Price: 0})
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "Must be greater than 0", errs["price"])

	assert.Nil(t, ValidateStruct(payload{Email: "a@b.test", Price: 1}))
}

func TestNormalizePage(t *testing.T) {
	page, perPage := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	_, perPage = NormalizePage(2, 1000)
	assert.Equal(t, MaxPerPage, perPage)

	assert.Equal(t, 3, CalculateTotalPages(41, 20))
	assert.Equal(t, 20, CalculateOffset(2, 20))
}
