package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lingua/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "zero" so a partial file only touches
// the keys it names.
type JsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	SocketURL         *string         `json:"socket_url"`
	RealtimeURL       *string         `json:"realtime_url"`
	RealtimeModel     *string         `json:"realtime_model"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	AutoRefresh       *bool           `json:"auto_refresh"`
	DatabasePath      *string         `json:"database_path"`
	CacheTTL          *timex.Duration `json:"cache_ttl"`
	StorageSecret     *string         `json:"storage_secret"`
	BreakerThreshold  *int            `json:"breaker_threshold"`
	BreakerCooldown   *timex.Duration `json:"breaker_cooldown"`
	StatePollInterval *timex.Duration `json:"state_poll_interval"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	PushToken         *string         `json:"push_token"`
	MetricsAddr       *string         `json:"metrics_addr"`
}

// LoadJSON overlays c with the keys present in the JSON file at path.
func (c *Config) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(c)
	return nil
}

func (jc *JsonConfig) apply(c *Config) {
	setString(&c.APIBaseURL, jc.APIBaseURL)
	setString(&c.SocketURL, jc.SocketURL)
	setString(&c.RealtimeURL, jc.RealtimeURL)
	setString(&c.RealtimeModel, jc.RealtimeModel)
	setString(&c.DatabasePath, jc.DatabasePath)
	setString(&c.StorageSecret, jc.StorageSecret)
	setString(&c.LogLevel, jc.LogLevel)
	setString(&c.LogFormat, jc.LogFormat)
	setString(&c.PushToken, jc.PushToken)
	setString(&c.MetricsAddr, jc.MetricsAddr)

	if jc.RequestTimeout != nil {
		c.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CacheTTL != nil {
		c.CacheTTL = jc.CacheTTL.Duration
	}
	if jc.BreakerCooldown != nil {
		c.BreakerCooldown = jc.BreakerCooldown.Duration
	}
	if jc.StatePollInterval != nil {
		c.StatePollInterval = jc.StatePollInterval.Duration
	}
	if jc.AutoRefresh != nil {
		c.AutoRefresh = *jc.AutoRefresh
	}
	if jc.BreakerThreshold != nil {
		c.BreakerThreshold = *jc.BreakerThreshold
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
