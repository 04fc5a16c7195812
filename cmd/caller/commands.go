package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"appcaller/internal/config"
	"appcaller/internal/logger"
	"appcaller/internal/services"
	"appcaller/internal/version"
)

var toolNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalogService, err := services.GetCatalogService()
			if err != nil {
				return err
			}
			tools, err := catalogService.List()
			if err != nil {
				return err
			}

			width := 0
			for _, tool := range tools {
				width = max(width, lipgloss.Width(tool.Name))
			}
			nameStyle := toolNameStyle.Width(width + 2)
			for _, tool := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", nameStyle.Render(tool.Name), tool.Description)
			}
			return nil
		},
	}
}

func (c *CLI) showCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show <tool>",
		Short: "Show the parameters of a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogService, err := services.GetCatalogService()
			if err != nil {
				return err
			}
			helpService, err := services.GetHelpService()
			if err != nil {
				return err
			}
			tool, err := catalogService.Get(args[0])
			if err != nil {
				return err
			}
			page, err := helpService.Render(tool, plain)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the markdown source instead of rendering it")
	return cmd
}

func (c *CLI) runCommand() *cobra.Command {
	var (
		set    []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run <tool> [flags] [-- positionals...]",
		Short: "Compile and run a tool",
		Long: `Compile the given values into a command line for the tool and run it.
Options and named positionals are given with --set key=value. Positional
values follow the tool name; put them after -- when they start with a dash.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callService, err := services.GetCallService()
			if err != nil {
				return err
			}
			req := services.CallRequest{
				Tool:        args[0],
				Positionals: args[1:],
				Set:         set,
			}

			if dryRun {
				cmdline, err := callService.Cmdline(req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cmdline.String())
				return nil
			}

			result, err := callService.Run(cmd.Context(), req)
			if result != nil {
				_, _ = cmd.OutOrStdout().Write(result.Stdout)
				_, _ = cmd.ErrOrStderr().Write(result.Stderr)
				for _, name := range result.FieldNames() {
					value, _ := result.Field(name)
					logger.Info("Output", "tool", req.Tool, "name", name, "value", value)
				}
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&set, "set", nil, "Set an option or named positional as key=value (repeatable)")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the compiled command line without running it")
	flags.Bool("allow-failure", false, "Exit zero even when the tool exits non-zero")
	flags.Bool("positionals-first", false, "Put positional values before options")
	flags.Duration("timeout", 0, "Kill the tool after this duration (0 disables)")
	flags.String("workdir", "", "Run the tool in this directory")

	c.bindFlag(cmd, config.KeyAllowFailure, "allow-failure")
	c.bindFlag(cmd, config.KeyPositionalsFirst, "positionals-first")
	c.bindFlag(cmd, config.KeyTimeout, "timeout")
	c.bindFlag(cmd, config.KeyWorkdir, "workdir")
	return cmd
}

func (c *CLI) versionCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text := version.GetFormattedVersion()
			if detailed {
				text = version.GetDetailedVersion()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show build details")
	return cmd
}
