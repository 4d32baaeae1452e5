package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	sectionform "github.com/goliatone/go-sectionform"
)

var (
	// Global flags
	configPath string
	logLevel   string

	// rt is assembled by the root pre-run hook and closed after the command.
	rt *sectionform.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "sectionform",
	Short: "Schema driven editor for page sections",
	Long: `sectionform loads section contracts (native YAML, JSON Schema, OpenAPI
or CUE), synthesizes editing forms from them and keeps section documents
valid against their contract.

Without --config the built-in contracts are served from memory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		rt, err = openRuntime(commandContext(cmd))
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level from the configuration")

	rootCmd.AddCommand(
		contractsCmd,
		schemaCmd,
		renderCmd,
		normalizeCmd,
		editCmd,
		serveCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads --config, or falls back to the defaults, then applies
// --log-level.
func loadConfig() (sectionform.Config, error) {
	cfg := sectionform.DefaultConfig()
	if strings.TrimSpace(configPath) != "" {
		loaded, err := sectionform.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if level := strings.TrimSpace(logLevel); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func openRuntime(ctx context.Context) (*sectionform.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return sectionform.NewRuntime(ctx, cfg)
}

func closeRuntime() error {
	if rt == nil {
		return nil
	}
	err := rt.Close()
	rt = nil
	return err
}

func runtimeOrErr() (*sectionform.Runtime, error) {
	if rt == nil {
		return nil, errors.New("runtime is not initialized")
	}
	return rt, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
