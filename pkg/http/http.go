package http

import (
	"fmt"
	"time"
)

/**
 * @file: http.go
 * @description: http server settings
 */

type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	PProf           bool
	BodyLimit       int // bytes, covers multipart uploads
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds, 0 keeps long media streams open
	IdleTimeout     int // seconds
	ShutdownTimeout int // seconds
	DrainTimeout    int // seconds /health reports draining before the listener closes
	ProxyHeader     string
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth configures the bearer check on the admin API. An empty SecretKey
// disables the check.
type Auth struct {
	SecretKey string
	Issuer    string
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 210 * 1024 * 1024
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 60
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15
	}
}

func (h *Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func (h *Http) ShutdownDuration() time.Duration {
	return time.Duration(h.ShutdownTimeout) * time.Second
}

func (h *Http) DrainDuration() time.Duration {
	return seconds(h.DrainTimeout)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
