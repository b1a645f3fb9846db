package serve

import (
	"context"
	"errors"
	cmdUtil "github.com/basset-hound/houndctl/cmd/util"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/server"
	"github.com/basset-hound/houndctl/rpc/transport/ws"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start a mock browser engine",
		Long:    `Start a mock engine that speaks the remote control protocol. It knows a handful of commands (ping, echo, sleep, fail, drop, screenshot and page navigation) and is meant for trying out clients and for benchmarks. The configuration can be set via command line flags or environment variables. The format of the environment variables is HOUND_<flag> (e.g. HOUND_ENDPOINT=127.0.0.1:9000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, common.DefaultServerEndpoint, cmdUtil.WrapString("The address on which the mock engine will listen (e.g. localhost:8765)"))

	key = "max-message-size"
	ServeCmd.PersistentFlags().Int64(key, common.DefaultMaxMessageBytes/1024, cmdUtil.WrapString("Largest accepted inbound message (in KB)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MaxMessageBytes = viper.GetInt64("max-message-size") * 1024
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if _, err := common.ParseEndpoint(serveCmdConfig.Endpoint); err != nil {
		return err
	}
	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the mock engine and stops it on SIGINT or SIGTERM
func run(cmd *cobra.Command, _ []string) error {
	t := ws.NewServerTransport()
	engine := server.NewMockEngine()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Serve(*serveCmdConfig, t)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	server.Logger.Infof("Shutting down mock engine")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := t.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
