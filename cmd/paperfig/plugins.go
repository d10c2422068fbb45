package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List or validate registered plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered critique rule and reproducibility check",
	RunE:  runPluginsList,
}

var pluginsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every plugin descriptor against the plugin schema",
	RunE:  runPluginsValidate,
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsValidateCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func runPluginsList(_ *cobra.Command, _ []string) error {
	for _, desc := range plugins.Default().List() {
		enabled := " "
		if desc.EnabledByDefault {
			enabled = "*"
		}
		fmt.Printf("%s %-45s %s\n", enabled, desc.PluginID, desc.Description)
	}
	return nil
}

func runPluginsValidate(_ *cobra.Command, _ []string) error {
	problems := plugins.Default().Validate()
	if len(problems) == 0 {
		fmt.Println("All plugin descriptors are valid")
		return nil
	}
	for _, problem := range problems {
		fmt.Printf("  %s\n", problem)
	}
	return fmt.Errorf("%d plugin descriptor problem(s)", len(problems))
}
