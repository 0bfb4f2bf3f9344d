package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/version"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage model versions (list, resolve, verify, init)",
		Long: `Model versions are immutable artifact directories forming a
generation chain. Resolution falls back to older generations when a newer
one is missing or incomplete.

Examples:
  sentiment model list models/
  sentiment model resolve models/v4
  sentiment model verify models/v4
  sentiment model init models/v1 --labels positive,negative,neutral`,
	}

	cmd.AddCommand(
		newModelListCmd(),
		newModelResolveCmd(),
		newModelVerifyCmd(),
		newModelInitCmd(),
	)

	return cmd
}

func newModelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <models-dir>",
		Short: "List model versions, newest generation first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := version.List(args[0])
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(infos)
			}
			if len(infos) == 0 {
				fmt.Println("No versions found.")
				return nil
			}
			for _, info := range infos {
				state := "complete"
				if !info.Complete {
					state = "INCOMPLETE"
				}
				fmt.Printf("%-20s gen %-4d %s\n", info.Name, info.Generation, state)
			}
			return nil
		},
	}
}

func newModelResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <version-dir>",
		Short: "Resolve which version a consumer should load",
		Long: `Print the version directory a consumer should load for the requested
path, falling back through older generations when needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Resolve(args[0])
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(v)
			}
			if v.Path != args[0] {
				fmt.Fprintf(os.Stderr, "requested %s not available, falling back\n", args[0])
			}
			fmt.Println(v.Path)
			return nil
		},
	}
}

func newModelVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <version-dir>",
		Short: "Check a version directory for structural completeness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, complete := version.Verify(args[0])
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				out := struct {
					Complete   bool                      `json:"complete"`
					Components []version.ComponentStatus `json:"components"`
				}{complete, statuses}
				if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
					return err
				}
			} else {
				for _, st := range statuses {
					mark := "ok"
					if !st.Present {
						mark = "MISSING"
					}
					fmt.Printf("%-20s %s\n", st.Name, mark)
				}
			}
			if !complete {
				return fmt.Errorf("%s is incomplete", args[0])
			}
			return nil
		},
	}
}

func newModelInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <version-dir>",
		Short: "Bootstrap a fresh generation-1 model version",
		Long: `Create a new version directory with a freshly initialized
classification head and the built-in hashing encoder, so a version chain
can be started without an external artifact.

Example:
  sentiment model init models/v1 --labels positive,negative,neutral`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labelsFlag, _ := cmd.Flags().GetString("labels")
			maxLength, _ := cmd.Flags().GetInt("max-length")
			seed, _ := cmd.Flags().GetInt64("seed")

			labels := strings.Split(labelsFlag, ",")
			for i := range labels {
				labels[i] = strings.TrimSpace(labels[i])
			}

			v, err := version.Init(args[0], labels, maxLength, seed)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(v)
			}
			fmt.Printf("Initialized model version %s\n", v.Path)
			return nil
		},
	}

	cmd.Flags().String("labels", "positive,negative,neutral", "Comma-separated label set")
	cmd.Flags().Int("max-length", 256, "Max feature length")
	cmd.Flags().Int64("seed", 42, "Initialization seed")

	return cmd
}
