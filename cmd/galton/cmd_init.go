package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the output directory",
		Long: `Create <root>/out, where the simulation writes its data files and
run index. The simulation itself never creates it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			outDir := filepath.Join(root, constants.OutputDirName)
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "initialized",
					"path":   outDir,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", outDir)
			}
			return nil
		},
	}
}
