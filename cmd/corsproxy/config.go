package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lamg/corsproxy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	configName = "corsproxy"
	envPrefix  = "CORSPROXY"
)

type logSettings struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type settings struct {
	Listen        string           `mapstructure:"listen"`
	Fast          bool             `mapstructure:"fast"`
	MetricsListen string           `mapstructure:"metrics_listen"`
	Log           logSettings      `mapstructure:"log"`
	Relay         corsproxy.Config `mapstructure:",squash"`
}

func setDefaults(v *viper.Viper) {
	c := corsproxy.DefaultConfig()
	v.SetDefault("listen", ":8080")
	v.SetDefault("fast", false)
	v.SetDefault("metrics_listen", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("allow_origins", c.AllowOrigins)
	v.SetDefault("deny_targets", c.DenyTargets)
	v.SetDefault("require_origin", c.RequireOrigin)
	v.SetDefault("target_param", c.TargetParam)
	v.SetDefault("override_header", c.OverrideHeader)
	v.SetDefault("client_ip_header", c.ClientIPHeader)
	v.SetDefault("passthrough", c.Passthrough)
	identity := make([]map[string]interface{}, len(c.Identity))
	for i, p := range c.Identity {
		identity[i] = map[string]interface{}{"name": p.Name, "value": p.Value}
	}
	v.SetDefault("identity", identity)
	v.SetDefault("max_age", c.MaxAge)
	v.SetDefault("fetch_timeout", c.FetchTimeout)
	v.SetDefault("dial_timeout", c.DialTimeout)
	v.SetDefault("tls_handshake_timeout", c.TLSHandshakeTimeout)
	v.SetDefault("max_idle_conns", c.MaxIdleConns)
	v.SetDefault("idle_conn_timeout", c.IdleConnTimeout)
	v.SetDefault("parent_proxy", c.ParentProxy)
	v.SetDefault("interface", c.Interface)
}

// loadSettings reads corsproxy.yaml from dir, ./config or the
// working directory, with environment variables prefixed by
// CORSPROXY_ taking precedence. A missing file isn't an error.
func loadSettings(v *viper.Viper, dir string) (s *settings, e error) {
	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	e = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(e, &notFound) {
		e = nil
	}
	if e != nil {
		e = fmt.Errorf("reading %s.yaml: %w", configName, e)
	}
	if e == nil {
		s = new(settings)
		e = v.Unmarshal(s)
	}
	return
}

func newLogger(ls logSettings) (lg *logrus.Logger, e error) {
	lg = logrus.New()
	var lvl logrus.Level
	lvl, e = logrus.ParseLevel(ls.Level)
	if e == nil {
		lg.SetLevel(lvl)
		if ls.JSON {
			lg.SetFormatter(&logrus.JSONFormatter{})
		} else {
			lg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
	} else {
		lg = nil
	}
	return
}
