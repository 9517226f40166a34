package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultListen, cfg.Listen)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Display, again.Display)
	assert.Equal(t, cfg.Refresh, again.Refresh)
}

func TestLoadPartialFileIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
display:
  left_mode: LABOR
refresh:
  initial_seconds: 10
booking_json:
  rooms: "101, 102"
locations:
  "123456": {icon: "🏢", abbreviation: OA, name: office}
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "LABOR", cfg.Display.LeftMode)
	assert.Equal(t, "LABOR", cfg.Display.RightMode, "right mirrors left")
	assert.Equal(t, 10, cfg.Refresh.InitialSeconds)
	assert.Equal(t, 300, cfg.Refresh.MaxSeconds)
	assert.Equal(t, 5, cfg.Refresh.FirstSeconds)
	assert.Equal(t, "101, 102", cfg.BookingJSON.Rooms)
	assert.Equal(t, LocationIcon{Icon: "🏢", Abbreviation: "OA", Name: "office"}, cfg.Locations["123456"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display: [oops"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shifts.Token = "from-file"
	env := map[string]string{
		EnvShiftsToken:       "from-env",
		EnvBookingJSONAPIKey: "",
	}
	cfg.BookingJSON.APIKey = "kept"

	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "from-env", cfg.Shifts.Token)
	assert.Equal(t, "kept", cfg.BookingJSON.APIKey, "empty values do not override")
	assert.Empty(t, cfg.BookingXML.Password)
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("f", "")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = ParseIDList("f", " 1, 2 ,3")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	_, err = ParseIDList("booking_xml.statuses", "1,,2")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "booking_xml.statuses")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"max below initial", func(c *Config) { c.Refresh.MaxSeconds = 10 }, true},
		{"bad id list", func(c *Config) { c.BookingXML.Buildings = "a" }, true},
		{"empty location", func(c *Config) { c.Locations["1"] = LocationIcon{Name: "x"} }, true},
		{"abbreviation only", func(c *Config) { c.Locations["1"] = LocationIcon{Abbreviation: "X"} }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
