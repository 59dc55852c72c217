package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arendt-dev/focusdeck/internal/export"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a workspace export into the local database",
	Long: "Import reads a JSON export and merges it last-write-wins: entities " +
		"updated more recently in the file replace local copies, deletions in " +
		"the file remove stale local entities, and everything else is left alone.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := export.ReadFile(s, args[0])
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	fmt.Printf("Imported %s\n", args[0])
	fmt.Printf("  pages:     %d added, %d updated\n", res.PagesAdded, res.PagesUpdated)
	fmt.Printf("  cards:     %d added, %d updated\n", res.CardsAdded, res.CardsUpdated)
	fmt.Printf("  blocks:    %d added, %d updated\n", res.BlocksAdded, res.BlocksUpdated)
	fmt.Printf("  deletions: %d applied\n", res.DeletionsApplied)
	if res.SettingsImported {
		fmt.Println("  focus settings updated")
	}
	return nil
}
