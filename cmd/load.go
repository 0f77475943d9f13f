package main

import "github.com/spf13/cobra"

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load source datasets into PostGIS",
	Long:  "Load trail geometries, Census block-group geometries, and the household income table.",
}

func init() { rootCmd.AddCommand(loadCmd) }
