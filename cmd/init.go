package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"s3util/internal/config"
)

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with the defaults",
	Long:  "Init writes a config file with the default settings to " + config.DefaultConfigDir + "/" + config.DefaultConfigName + " (or the path in " + config.EnvConfigPath + "), ready to be edited.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := config.Write(config.Default(), path); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
