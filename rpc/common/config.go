package common

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultHost            = "localhost"
	DefaultPort            = 8765
	DefaultConnectTimeout  = 10 * time.Second
	DefaultCommandTimeout  = 30 * time.Second
	DefaultReconnectDelay  = 1 * time.Second
	DefaultMaxMessageBytes = 32 << 20 // screenshots and page archives are large
	DefaultServerEndpoint  = "0.0.0.0:8765"
)

// --------------------------------------------------------------------------
// Endpoint
// --------------------------------------------------------------------------

// Endpoint is the address of the browser engine's WebSocket server.
// It is immutable once a client has been created with it.
type Endpoint struct {
	Host string
	Port int
	Path string
}

// NewEndpoint creates an endpoint for host:port with the root path
func NewEndpoint(host string, port int) Endpoint {
	return Endpoint{Host: host, Port: port}
}

// ParseEndpoint parses either a full ws:// URI or a plain host:port pair
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("empty endpoint")
	}

	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if u.Scheme != "ws" {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		host = DefaultHost
	}

	port := DefaultPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("invalid endpoint %q: bad port %q", raw, p)
		}
	}

	path := u.Path
	if path == "/" {
		path = ""
	}

	return Endpoint{Host: host, Port: port, Path: path}, nil
}

// Address returns host:port
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL returns the connection URI, e.g. ws://localhost:8765
func (e Endpoint) URL() string {
	u := url.URL{Scheme: "ws", Host: e.Address(), Path: e.Path}
	return u.String()
}

func (e Endpoint) String() string {
	return e.URL()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds everything needed to reach and talk to a browser engine.
// Zero values are replaced by the defaults above, see WithDefaults.
type ClientConfig struct {
	Endpoint Endpoint

	// ConnectTimeout bounds the WebSocket handshake
	ConnectTimeout time.Duration
	// CommandTimeout is used by Invoke when the caller does not pass one
	CommandTimeout time.Duration

	// AutoReconnect schedules a single reconnect attempt ReconnectDelay after
	// the engine closed the connection, and lets Invoke connect lazily
	AutoReconnect  bool
	ReconnectDelay time.Duration

	// MaxMessageBytes is the read limit for a single inbound message
	MaxMessageBytes int64

	// RateLimit throttles outgoing commands (commands per second, 0 = off)
	RateLimit float64
	RateBurst int
}

// DefaultClientConfig returns the configuration the original client used
func DefaultClientConfig() ClientConfig {
	return ClientConfig{}.WithDefaults()
}

// WithDefaults returns a copy with all zero values replaced by defaults
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Endpoint.Host == "" {
		c.Endpoint.Host = DefaultHost
	}
	if c.Endpoint.Port == 0 {
		c.Endpoint.Port = DefaultPort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = DefaultCommandTimeout
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		c.RateBurst = 1
	}
	return c
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint.URL())
	addField("Connect Timeout", c.ConnectTimeout.String())
	addField("Command Timeout", c.CommandTimeout.String())
	addField("Max Message Size", fmt.Sprintf("%d KB", c.MaxMessageBytes/1024))

	addSection("Reconnect")
	addField("Auto Reconnect", strconv.FormatBool(c.AutoReconnect))
	addField("Reconnect Delay", c.ReconnectDelay.String())

	addSection("Rate Limit")
	if c.RateLimit > 0 {
		addField("Commands Per Second", strconv.FormatFloat(c.RateLimit, 'f', -1, 64))
		addField("Burst", strconv.Itoa(c.RateBurst))
	} else {
		addField("Commands Per Second", "unlimited")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Mock engine configuration struct
// --------------------------------------------------------------------------

// ServerConfig configures the local mock engine
type ServerConfig struct {
	// Endpoint is the listen address, e.g. 0.0.0.0:8765
	Endpoint string

	// MaxMessageBytes is the read limit for a single inbound message
	MaxMessageBytes int64

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\nMOCK ENGINE\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Endpoint", c.Endpoint))
	sb.WriteString(fmt.Sprintf("  %-22s: %d KB\n", "Max Message Size", c.MaxMessageBytes/1024))
	sb.WriteString("\nLOGGING\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Log Level", c.LogLevel))
	return sb.String()
}
