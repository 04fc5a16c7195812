package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"appcaller/internal/config"
	"appcaller/internal/logger"
	"appcaller/internal/services"
	"appcaller/pkg/callertypes"
)

// CLI holds the state shared by the appcaller commands.
type CLI struct {
	viper      *viper.Viper
	configFile string
	testMode   bool

	// executor replaces the os/exec executor when set
	executor callertypes.Executor

	cfg *config.Config
}

// NewCLI creates a CLI with its own configuration instance.
func NewCLI() *CLI {
	return &CLI{viper: viper.New()}
}

// CreateRootCommand creates and configures the root command
func (c *CLI) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "caller",
		Short: "Run external programs from declarative parameter definitions",
		Long: `caller compiles checked parameter values into command lines for the tools
described in its catalogs, runs them and reports their outputs.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initialize,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Config file (default: caller.yaml in the user config dir or working directory)")
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&c.testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringSlice("catalog-dir", nil, "Additional directory of tool YAML files (repeatable)")
	flags.String("env-file", "", "File of environment variables for the wrapped program (default: .env)")

	c.bindFlag(rootCmd, config.KeyLogLevel, "log-level")
	c.bindFlag(rootCmd, config.KeyLogFile, "log-file")
	c.bindFlag(rootCmd, config.KeyCatalogDirs, "catalog-dir")
	c.bindFlag(rootCmd, config.KeyEnvFile, "env-file")

	rootCmd.AddCommand(c.listCommand())
	rootCmd.AddCommand(c.showCommand())
	rootCmd.AddCommand(c.runCommand())
	rootCmd.AddCommand(c.versionCommand())

	return rootCmd
}

// bindFlag binds a persistent or local flag of cmd to a configuration key.
func (c *CLI) bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := c.viper.BindPFlag(key, f); err != nil {
		// Only reachable with a misspelled flag name
		panic(fmt.Sprintf("error binding %s flag: %v", flag, err))
	}
}

// initialize loads the configuration, configures logging and starts the services.
func (c *CLI) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.viper, c.configFile)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, c.testMode); err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}
	c.cfg = cfg

	services.SetGlobalRegistry(services.NewRegistry())
	if err := services.InitializeServices(cfg, c.executor); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	logger.Debug("Services initialized", "command", cmd.Name())
	return nil
}
