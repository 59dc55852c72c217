package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arendt-dev/focusdeck/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the whole workspace to a JSON file",
	Long: "Export writes every board, card, time block, deletion marker and the " +
		"focus settings to a single versioned JSON file suitable for backup or " +
		"for importing on another machine.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	path := filepath.Join(".", fmt.Sprintf("focusdeck-%s.json", time.Now().Format("2006-01-02")))
	if len(args) > 0 {
		path = args[0]
	}

	if err := export.WriteFile(s, path); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	fmt.Printf("Exported workspace to %s\n", path)
	return nil
}
