package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"neo-overwatch/api/services"
	"neo-overwatch/pkg/shared"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show one NEO by designation or name",
	Example: `  neowatch inspect --pdes 433
  neowatch inspect --name Ganymed --verbose`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("pdes", "", "primary designation")
	inspectCmd.Flags().String("name", "", "IAU name")
	inspectCmd.Flags().BoolP("verbose", "v", false, "also list close approaches")
	inspectCmd.MarkFlagsOneRequired("pdes", "name")
	inspectCmd.MarkFlagsMutuallyExclusive("pdes", "name")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	pdes, _ := cmd.Flags().GetString("pdes")
	name, _ := cmd.Flags().GetString("name")
	verbose, _ := cmd.Flags().GetBool("verbose")

	database, err := loadDatabase(cmd.Context(), cfg, appLog)
	if err != nil {
		return err
	}

	neo, err := services.NewNEOService(database, appLog).Lookup(&shared.LookupRequest{Designation: pdes, Name: name})
	if errors.Is(err, services.ErrNotFound) {
		fmt.Fprintln(cmd.ErrOrStderr(), "No matching NEOs exist in the database.")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, neo)
	if verbose {
		for _, ca := range neo.Approaches {
			fmt.Fprintln(out, "-", ca)
		}
	}
	return nil
}
