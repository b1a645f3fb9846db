package util

import (
	"encoding/json"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/client"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds the engine connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, common.DefaultHost, WrapString("Host of the browser engine's WebSocket server"))

	key = "port"
	cmd.PersistentFlags().Int(key, common.DefaultPort, WrapString("Port of the browser engine's WebSocket server"))

	key = "path"
	cmd.PersistentFlags().String(key, "", WrapString("Optional URL path of the WebSocket endpoint (e.g. /engine)"))

	key = "connect-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultConnectTimeout, WrapString("How long to wait for the WebSocket handshake"))

	key = "timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultCommandTimeout, WrapString("How long to wait for the response of a single command"))

	key = "auto-reconnect"
	cmd.PersistentFlags().Bool(key, false, WrapString("Reconnect once after the engine closed the connection and connect lazily on the first command"))

	key = "reconnect-delay"
	cmd.PersistentFlags().Duration(key, common.DefaultReconnectDelay, WrapString("Delay before the reconnect attempt"))

	key = "max-message-size"
	cmd.PersistentFlags().Int64(key, common.DefaultMaxMessageBytes/1024, WrapString("Largest accepted inbound message (in KB)"))

	key = "rate-limit"
	cmd.PersistentFlags().Float64(key, 0, WrapString("Maximum number of commands per second (0 = unlimited)"))

	key = "rate-burst"
	cmd.PersistentFlags().Int(key, 1, WrapString("How many commands may exceed the rate limit at once"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("hound")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() common.ClientConfig {
	conf := common.ClientConfig{
		Endpoint: common.Endpoint{
			Host: viper.GetString("host"),
			Port: viper.GetInt("port"),
			Path: viper.GetString("path"),
		},
		ConnectTimeout:  viper.GetDuration("connect-timeout"),
		CommandTimeout:  viper.GetDuration("timeout"),
		AutoReconnect:   viper.GetBool("auto-reconnect"),
		ReconnectDelay:  viper.GetDuration("reconnect-delay"),
		MaxMessageBytes: viper.GetInt64("max-message-size") * 1024,
		RateLimit:       viper.GetFloat64("rate-limit"),
		RateBurst:       viper.GetInt("rate-burst"),
	}

	return conf.WithDefaults()
}

// NewClient binds the command's flags, sets the log level and creates a
// client from the resulting configuration. The client is not connected yet.
func NewClient(cmd *cobra.Command) (*client.Client, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return nil, err
	}
	return client.New(GetClientConfig()), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// ParseParams builds the parameter map of a command from key=value pairs and
// an optional JSON object. Pairs take precedence over the JSON object. Values
// that parse as JSON (numbers, booleans, arrays, objects) keep their type,
// everything else is passed as a string.
func ParseParams(pairs []string, rawJSON string) (map[string]any, error) {
	params := make(map[string]any)

	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &params); err != nil {
			return nil, fmt.Errorf("invalid params %q: %w", rawJSON, err)
		}
		if params == nil {
			// the JSON was null
			params = make(map[string]any)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}
		params[key] = parseValue(value)
	}

	return params, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return raw
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil || raw == "true" || raw == "false" || raw == "null" ||
		strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

// PrintResult writes a result as indented JSON
func PrintResult(w io.Writer, result common.Result) error {
	if result == nil {
		result = common.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// FormatDuration rounds a duration for human readable output
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}
