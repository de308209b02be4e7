package main

import (
	"bytes"
	"io"
	h "net/http"
	ht "net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lamg/corsproxy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, e := loadSettings(viper.New(), t.TempDir())
	require.NoError(t, e)
	require.Equal(t, ":8080", s.Listen)
	require.False(t, s.Fast)
	require.Equal(t, "info", s.Log.Level)
	c := corsproxy.DefaultConfig()
	require.Equal(t, c.AllowOrigins, s.Relay.AllowOrigins)
	require.Empty(t, s.Relay.DenyTargets)
	require.Equal(t, c.Passthrough, s.Relay.Passthrough)
	require.Equal(t, c.Identity, s.Relay.Identity)
	require.Equal(t, "x-cors-headers", s.Relay.OverrideHeader)
	require.Equal(t, 86400, s.Relay.MaxAge)
	require.Equal(t, 30*time.Second, s.Relay.FetchTimeout)
	require.Empty(t, s.Relay.ParentProxy)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := `listen: ":9090"
metrics_listen: ":9091"
allow_origins:
  - ^https://app\.test$
deny_targets:
  - internal\.corp
require_origin: true
fetch_timeout: 5s
identity:
  - name: User-Agent
    value: test-agent
log:
  level: debug
  json: true
`
	e := os.WriteFile(filepath.Join(dir, "corsproxy.yaml"), []byte(yml), 0o600)
	require.NoError(t, e)
	s, e := loadSettings(viper.New(), dir)
	require.NoError(t, e)
	require.Equal(t, ":9090", s.Listen)
	require.Equal(t, ":9091", s.MetricsListen)
	require.Equal(t, []string{`^https://app\.test$`}, s.Relay.AllowOrigins)
	require.Equal(t, []string{`internal\.corp`}, s.Relay.DenyTargets)
	require.True(t, s.Relay.RequireOrigin)
	require.Equal(t, 5*time.Second, s.Relay.FetchTimeout)
	require.Equal(t, []corsproxy.HeaderPair{{Name: "User-Agent",
		Value: "test-agent"}}, s.Relay.Identity)
	require.Equal(t, "url", s.Relay.TargetParam)
	require.Equal(t, logSettings{Level: "debug", JSON: true}, s.Log)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CORSPROXY_LISTEN", ":7070")
	t.Setenv("CORSPROXY_PARENT_PROXY", "socks5://127.0.0.1:1080")
	t.Setenv("CORSPROXY_MAX_AGE", "60")
	t.Setenv("CORSPROXY_LOG_LEVEL", "warn")
	s, e := loadSettings(viper.New(), t.TempDir())
	require.NoError(t, e)
	require.Equal(t, ":7070", s.Listen)
	require.Equal(t, "socks5://127.0.0.1:1080", s.Relay.ParentProxy)
	require.Equal(t, 60, s.Relay.MaxAge)
	require.Equal(t, "warn", s.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	e := os.WriteFile(filepath.Join(dir, "corsproxy.yaml"),
		[]byte("listen: [\n"), 0o600)
	require.NoError(t, e)
	_, e = loadSettings(viper.New(), dir)
	require.Error(t, e)
}

func TestFlagsOverride(t *testing.T) {
	c := newRootCmd()
	require.NoError(t, c.Flags().Parse([]string{"-a", ":6060", "-f"}))
	fs := c.Flags()
	addr, e := fs.GetString("addr")
	require.NoError(t, e)
	require.Equal(t, ":6060", addr)
	fast, e := fs.GetBool("fast")
	require.NoError(t, e)
	require.True(t, fast)
}

func TestExecuteLogsErrors(t *testing.T) {
	c := newRootCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs([]string{"-c", t.TempDir(), "--log-level", "loud"})
	lg, hook := test.NewNullLogger()
	require.Equal(t, 1, execute(c, lg))
	require.Len(t, hook.AllEntries(), 1)
	en := hook.LastEntry()
	require.Equal(t, logrus.ErrorLevel, en.Level)
	require.Contains(t, en.Data[logrus.ErrorKey].(error).Error(), "loud")
	require.NotContains(t, out.String(), "Error:")
}

func TestNewLogger(t *testing.T) {
	lg, e := newLogger(logSettings{Level: "debug", JSON: true})
	require.NoError(t, e)
	require.Equal(t, logrus.DebugLevel, lg.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, lg.Formatter)

	_, e = newLogger(logSettings{Level: "loud"})
	require.Error(t, e)
}

func TestAdminSrv(t *testing.T) {
	reg := prometheus.NewRegistry()
	corsproxy.NewMetrics(reg)
	s := adminSrv(":0", reg)
	rr := ht.NewRecorder()
	s.Handler.ServeHTTP(rr, ht.NewRequest(h.MethodGet, "/health", nil))
	require.Equal(t, h.StatusOK, rr.Code)
	require.Equal(t, "OK", rr.Body.String())

	rr = ht.NewRecorder()
	s.Handler.ServeHTTP(rr, ht.NewRequest(h.MethodGet, "/metrics", nil))
	require.Equal(t, h.StatusOK, rr.Code)
	bs, e := io.ReadAll(rr.Body)
	require.NoError(t, e)
	require.Contains(t, string(bs), "corsproxy_upstream_in_flight")
}
