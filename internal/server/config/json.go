package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10s" and integer nanoseconds are accepted. Absent
// or zero fields keep their current value.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	Storage                     string         `json:"storage"`
	DatabaseDSN                 string         `json:"database_dsn"`
	BadgerPath                  string         `json:"badger_path"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	HandshakeTimeout            timex.Duration `json:"handshake_timeout"`
	WriteTimeout                timex.Duration `json:"write_timeout"`
	PongWait                    timex.Duration `json:"pong_wait"`
	RequestTimeout              timex.Duration `json:"request_timeout"`
	SendQueueSize               int            `json:"send_queue_size"`
	MaxFrameBytes               int64          `json:"max_frame_bytes"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (or $GOPHCHAT_CONFIG) into
// config. Without a path nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BadgerPath, c.BadgerPath)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setNonZero(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setNonZero(&config.HandshakeTimeout, c.HandshakeTimeout.Duration)
	setNonZero(&config.WriteTimeout, c.WriteTimeout.Duration)
	setNonZero(&config.PongWait, c.PongWait.Duration)
	setNonZero(&config.RequestTimeout, c.RequestTimeout.Duration)
	setNonZero(&config.SendQueueSize, c.SendQueueSize)
	setNonZero(&config.MaxFrameBytes, c.MaxFrameBytes)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
