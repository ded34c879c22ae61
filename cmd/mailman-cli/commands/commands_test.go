package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mailman-admin/internal/scrapers/mailman"
	"mailman-admin/lib/configutil"

	"github.com/stretchr/testify/require"
)

func TestReadAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.txt")
	err := os.WriteFile(path, []byte("# new members\nerin@example.org\n\n  frank@example.org  \n"), 0600)
	require.NoError(t, err)

	addresses, err := readAddresses([]string{"dave@example.org"}, path)
	require.NoError(t, err)
	require.Equal(t, []string{"dave@example.org", "erin@example.org", "frank@example.org"}, addresses)

	_, err = readAddresses(nil, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	validate := false
	opts, err := clientOptions(Config{
		BaseUrl:       "https://lists.example.org/mailman/admin/test",
		Password:      "hunter2",
		ValidateCerts: &validate,
		Timeout:       "5s",
	})
	require.NoError(t, err)
	require.True(t, opts.SkipCertValidation)
	require.Equal(t, 5*time.Second, opts.Timeout)
	require.Nil(t, opts.MessageOutput)

	opts, err = clientOptions(Config{BaseUrl: "https://lists.example.org/mailman/admin/test"})
	require.NoError(t, err)
	require.False(t, opts.SkipCertValidation)

	_, err = clientOptions(Config{})
	require.Error(t, err)

	_, err = clientOptions(Config{BaseUrl: "https://lists.example.org", Timeout: "soon"})
	require.Error(t, err)
}

func TestConfigPartialLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailman.json5")
	err := os.WriteFile(path, []byte(`{
		base_url: "https://lists.example.org/mailman/admin/test",
		layout: {
			roster_table: 5,
			failure_marker: "::",
		},
	}`), 0600)
	require.NoError(t, err)

	cfg, err := configutil.ReadConfig[Config](path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Layout)
	require.Equal(t, mailman.Layout{RosterTable: 5, FailureMarker: "::"}, *cfg.Layout)

	opts, err := clientOptions(cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.Layout, opts.Layout)
}
