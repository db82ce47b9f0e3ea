package api

import (
	"net/http"
	"time"
)

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int64  `yaml:"read_timeout_ms"`
	WriteTimeoutMs int64  `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int64  `yaml:"idle_timeout_ms"`
}

func (c *ServerConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = 5000
	}
	if c.WriteTimeoutMs == 0 {
		c.WriteTimeoutMs = 10000
	}
	if c.IdleTimeoutMs == 0 {
		c.IdleTimeoutMs = 60000
	}
}

func NewServer(cfg *ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutMs) * time.Millisecond,
	}
}
