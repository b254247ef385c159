package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Overrides holds flag values bound by BindFlags. Only flags the user
// actually set are applied, so flag defaults never mask JSON or env values.
type Overrides struct {
	fs *pflag.FlagSet

	apiBaseURL     string
	socketURL      string
	requestTimeout time.Duration
	dbPath         string
	logLevel       string
	logFormat      string
	autoRefresh    bool
	metricsAddr    string
}

// BindFlags registers the configuration flags on fs.
//
//	--api-url string          backend base URL
//	--socket-url string       realtime socket base URL
//	--timeout duration        REST request timeout
//	--db string               local database path
//	--log-level string        debug|info|warn|error
//	--log-format string       text|json
//	--auto-refresh            refresh tokens on 401 and replay once
//	--metrics-addr string     serve Prometheus metrics on this address
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}

	fs.StringVar(&o.apiBaseURL, "api-url", "", "backend base URL")
	fs.StringVar(&o.socketURL, "socket-url", "", "realtime socket base URL")
	fs.DurationVar(&o.requestTimeout, "timeout", 0, "REST request timeout")
	fs.StringVar(&o.dbPath, "db", "", "local database path")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug|info|warn|error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: text|json")
	fs.BoolVar(&o.autoRefresh, "auto-refresh", false, "refresh tokens on 401 and replay the request once")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return o
}

// Apply copies explicitly set flags into c. A nil receiver is a no-op.
func (o *Overrides) Apply(c *Config) {
	if o == nil || o.fs == nil {
		return
	}

	if o.fs.Changed("api-url") {
		c.APIBaseURL = o.apiBaseURL
	}
	if o.fs.Changed("socket-url") {
		c.SocketURL = o.socketURL
	}
	if o.fs.Changed("timeout") {
		c.RequestTimeout = o.requestTimeout
	}
	if o.fs.Changed("db") {
		c.DatabasePath = o.dbPath
	}
	if o.fs.Changed("log-level") {
		c.LogLevel = o.logLevel
	}
	if o.fs.Changed("log-format") {
		c.LogFormat = o.logFormat
	}
	if o.fs.Changed("auto-refresh") {
		c.AutoRefresh = o.autoRefresh
	}
	if o.fs.Changed("metrics-addr") {
		c.MetricsAddr = o.metricsAddr
	}
}
