// Package remote drives the assistant's tmux session on a remote host over SSH.
package remote

import (
	"net"
	"strconv"
	"time"
)

// Config describes how to reach the host running the assistant session.
type Config struct {
	Host           string
	Port           int
	User           string
	KeyPath        string
	KnownHostsPath string
	Timeout        time.Duration
	Session        string
}

// DefaultConfig returns settings for a local host with a "claude" tmux session.
func DefaultConfig() Config {
	return Config{
		Host:    "localhost",
		Port:    22,
		Timeout: 30 * time.Second,
		Session: "claude",
	}
}

// Addr returns host:port for dialing.
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}
