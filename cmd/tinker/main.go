package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/martinemde/tinker/agentloop"
	"github.com/martinemde/tinker/llm"
	"github.com/martinemde/tinker/tui"
)

var version = "dev"

var (
	configFile string
	modelFlag  string
	workdir    string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tinker",
	Short: "tinker - an interactive coding agent for your working directory",
	Long: `tinker pairs a chat model with read_file, list_files, and edit_file
tools scoped to a single working directory. Type instructions, watch the
agent read and edit files, and keep the conversation going.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; explicit environment always wins.
		_ = godotenv.Load()
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tinker version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tinker", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default tinker.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "model to use (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&workdir, "workdir", "w", "", "working directory (default current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

// initLogger builds a file-backed zap logger. The chat UI owns the terminal,
// so log output never goes to stdout.
func initLogger() error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "tinker.log"
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{logFile}
	zapCfg.ErrorOutputPaths = []string{logFile}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

func runChat() error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
		if p := llm.ProviderForModel(modelFlag); p != "" {
			cfg.Provider = p
		}
	}
	if workdir != "" {
		cfg.Workspace = workdir
	}

	client, err := llm.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("no usable provider: %w (set ANTHROPIC_API_KEY or OPENAI_API_KEY)", err)
	}
	defer client.Close()

	ws, err := agentloop.NewWorkspace(cfg.Workspace)
	if err != nil {
		return err
	}

	registry := agentloop.NewToolRegistry()
	agentloop.RegisterCoreTools(registry)

	sessionCfg := agentloop.DefaultSessionConfig()
	sessionCfg.Model = cfg.Model
	sessionCfg.Provider = cfg.Provider
	sessionCfg.SystemPrompt = cfg.SystemPrompt
	if cfg.MaxToolRounds > 0 {
		sessionCfg.MaxToolRounds = cfg.MaxToolRounds
	}
	if cfg.MaxOutputTokens > 0 {
		sessionCfg.MaxOutputTokens = cfg.MaxOutputTokens
	}

	session := agentloop.NewSession(client, registry, ws, &sessionCfg)
	defer session.Close()

	logger.Info("session started",
		zap.String("session_id", session.ID()),
		zap.String("model", cfg.Model),
		zap.String("workspace", ws.Root()),
	)

	if err := tui.Run(session); err != nil {
		logger.Error("chat exited with error", zap.Error(err))
		return err
	}
	logger.Info("session ended", zap.String("session_id", session.ID()))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
