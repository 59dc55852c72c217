package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arendt-dev/focusdeck/internal/store"
	"github.com/arendt-dev/focusdeck/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "focusdeck",
	Short: "Kanban boards with an hour-by-hour focus scheduler",
	Long: "Focusdeck keeps kanban boards and a time-blocked day plan in one local " +
		"SQLite file. Cards become time blocks, blocks become focus sessions, and " +
		"everything can be exported and merged across machines.",
	RunE: runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.config/focusdeck/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database file (default ~/.config/focusdeck/focusdeck.db)")
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/focusdeck")
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("FOCUSDECK")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

func openStore() (*store.Store, error) {
	dbPath := viper.GetString("db")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	app, err := tui.NewApp(s)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
