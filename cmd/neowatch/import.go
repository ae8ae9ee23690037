package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neo-overwatch/pkg/extract"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the NEO and close approach files into the sqlite catalog",
	Long: "import replaces the contents of the sqlite catalog with the records read from\n" +
		"--neos and --cad. Later runs can use --source sqlite to skip file parsing.",
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if cfg.NEOPath == "" || cfg.CADPath == "" {
		return fmt.Errorf("import needs both --neos and --cad")
	}

	catalog, err := openCatalog(cmd.Context(), cfg, appLog)
	if err != nil {
		return err
	}
	defer catalog.Close()

	run, err := catalog.Import(cmd.Context(), extract.NewFileSource(cfg.NEOPath, cfg.CADPath))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d NEOs and %d close approaches into %s (run %s)\n",
		run.NEOs, run.Approaches, cfg.SQLitePath, run.RunID)
	return nil
}
