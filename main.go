package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/interacthq/jobagent/history"
)

func isInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openHistory is best-effort: a broken store disables transcripts, not
// the chat.
func openHistory() *history.Manager {
	dbPath, jsonlPath, err := historyPaths()
	if err != nil {
		return nil
	}
	mgr, err := history.New(dbPath, jsonlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: transcript store unavailable: %v\n", err)
		return nil
	}
	return mgr
}

// sessionTranscript loads a stored session by uuid prefix and renders
// it in the clipboard format.
func sessionTranscript(mgr *history.Manager, prefix string) (string, error) {
	uuid, err := mgr.ResolveSessionUUID(prefix)
	if err != nil {
		return "", err
	}
	msgs, err := mgr.GetSessionMessages(uuid)
	if err != nil {
		return "", err
	}
	return plainTranscript(msgs), nil
}

func runChat(cmd *cobra.Command, args []string) error {
	if !isInteractive(os.Stdout.Fd()) {
		return fmt.Errorf("jobagent is interactive and requires a terminal")
	}

	file, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolveConfig(cmd, file)

	mgr := openHistory()
	var store transcriptStoreFull
	if mgr != nil {
		defer mgr.Close()
		store = mgr
	}

	p := tea.NewProgram(initialChatModel(cfg, store), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobagent",
		Short: "Conversational AI job-search agent",
		Long:  "Chat with an AI recruiting manager: search jobs, apply in batches and keep your profile current, all from the terminal.",
		RunE:  runChat,
	}

	rootCmd.Flags().String("endpoint", "", "Agent API endpoint (env API_ENDPOINT)")
	rootCmd.Flags().StringP("api-key", "k", "", "Agent API key (env API_KEY)")
	rootCmd.Flags().String("profile", "", "Profile ID to prefill (env JOBAGENT_PROFILE_ID)")
	rootCmd.Flags().Int("timeout", 0, "API timeout in seconds (default 30)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Dump API wire traffic")

	sessionsCmd := &cobra.Command{
		Use:   "sessions [uuid-prefix]",
		Short: "List recent chat sessions, or print one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := openHistory()
			if mgr == nil {
				return fmt.Errorf("transcript store unavailable")
			}
			defer mgr.Close()
			if len(args) == 1 {
				transcript, err := sessionTranscript(mgr, args[0])
				if err != nil {
					return err
				}
				fmt.Print(transcript)
				return nil
			}
			if isInteractive(os.Stdout.Fd()) {
				return browseSessions(mgr)
			}
			sessions, err := mgr.ListRecentSessions(20)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No stored sessions.")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %s  [%s]  %s\n",
					s.Timestamp.Format("2006-01-02 15:04"), s.UUID[:8], s.ProfileID, s.Summary)
			}
			return nil
		},
	}
	rootCmd.AddCommand(sessionsCmd)

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search conversation history",
		Long:  "Search stored transcripts. Use 'user:term' or 'ai:term' to filter by sender.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := openHistory()
			if mgr == nil {
				return fmt.Errorf("transcript store unavailable")
			}
			defer mgr.Close()
			results, err := mgr.Search(args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No matches found.")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%s [%s] (%s): %s\n",
					r.Timestamp.Format("2006-01-02 15:04"), r.SessionUUID[:8], r.Sender, r.Preview)
			}
			return nil
		},
	}
	rootCmd.AddCommand(searchCmd)

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and dependencies",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("jobagent doctor")
			fmt.Println("===============")

			file, err := loadConfigFile()
			if err != nil {
				fmt.Printf("❌ Configuration : %v\n", err)
				file = &ConfigFile{}
			}
			cfg := resolveConfig(nil, file)

			if cfg.Endpoint != "" {
				fmt.Printf("✅ API endpoint  : %s\n", cfg.Endpoint)
			} else {
				fmt.Println("❌ API endpoint  : Not set (API_ENDPOINT env, config, or --endpoint)")
			}
			if cfg.APIKey != "" {
				fmt.Println("✅ API key       : Set")
			} else {
				fmt.Println("❌ API key       : Not set (API_KEY env, config, or --api-key)")
			}
			fmt.Printf("   Profile ID    : %s\n", cfg.ProfileID)

			if history.CheckFTS() {
				fmt.Println("✅ SQLite FTS5   : Enabled (search available)")
			} else {
				fmt.Println("⚠️  SQLite FTS5   : Disabled")
				fmt.Println("   -> FIX: Build with '-tags sqlite_fts5'")
			}
		},
	}
	rootCmd.AddCommand(doctorCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
