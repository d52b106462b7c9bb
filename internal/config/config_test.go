package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "/api/reference/create/", cfg.Endpoint.RoutePath)
	assert.Equal(t, "X-CSRFToken", cfg.Endpoint.CSRFHeader)
	assert.Equal(t, 15*time.Second, cfg.Endpoint.Timeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.Interval)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inlinecreate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
store:
  driver: sqlite
  dsn: refs.db
endpoint:
  csrf_cookie: csrftoken
theme:
  name: acme
`), 0o600))
	t.Setenv("INLINECREATE_SERVER_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "refs.db", cfg.Store.DSN)
	assert.Equal(t, "csrftoken", cfg.Endpoint.CSRFCookie)
	assert.Equal(t, "acme", cfg.Theme.Name)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: sqlite\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "store.dsn")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseWidgets(t *testing.T) {
	m, err := ParseWidgets(strings.NewReader(`
widgets:
  - select_id: department
    model: department
    options:
      - {value: "1", label: Sales}
  - select_id: position
    model: position
    parent_select_id: department
    requires_parent: true
    title: Add position
  - select_id: country
    model: country
    can_add: false
`))
	require.NoError(t, err)
	require.Len(t, m.Widgets, 3)

	assert.True(t, m.Widgets[0].CanAdd)
	assert.Equal(t, []widget.Option{{Value: "1", Label: "Sales"}}, m.Widgets[0].Options)
	assert.True(t, m.Widgets[1].RequiresParent)
	assert.Equal(t, "Add position", m.Widgets[1].Title)
	assert.False(t, m.Widgets[2].CanAdd)

	spec, ok := m.Find("position")
	require.True(t, ok)
	assert.Equal(t, "department", spec.ParentSelectID)
	assert.Len(t, m.Configs(), 3)
}

func TestParseWidgets_Errors(t *testing.T) {
	_, err := ParseWidgets(strings.NewReader("widgets:\n  - model: x\n"))
	assert.ErrorIs(t, err, widget.ErrMissingSelectID)

	_, err = ParseWidgets(strings.NewReader("widgets:\n  - select_id: a\n"))
	assert.ErrorIs(t, err, widget.ErrMissingModel)

	_, err = ParseWidgets(strings.NewReader("widgets:\n  - {select_id: a, model: m}\n  - {select_id: a, model: m}\n"))
	assert.ErrorContains(t, err, "duplicate")
}
