package main

import (
	"fmt"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config file commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		if utils.FileExists(path) {
			return fmt.Errorf("config %s already exists", path)
		}
		if _, err := config.InitConfig(path); err != nil {
			return err
		}
		log.Info("Wrote default config", "path", config.GetActiveConfigPath(path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
