package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var buildVersion = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Arabic sentiment model retraining pipeline",
		Long: `sentiment manages the active-learning retraining pipeline for the
Arabic sentiment classifier.

It turns human-supplied corrections into new, versioned model artifacts
with atomic visibility and generation fallback, so inference keeps
serving the previous version while a new one is produced.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for tool consumption)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRetrainCmd(),
		newModelCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": buildVersion})
			} else {
				fmt.Printf("sentiment version %s\n", buildVersion)
			}
		},
	}
}
