// Package cli implements the cobra command tree. Commands talk to the
// core through the driving ports; wiring happens once via Configure
// before Execute.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// SetVersion overrides the build version string.
func SetVersion(v string) {
	version = v
}

// Services holds the wired ports the commands run against. Any entry
// may be nil; the corresponding commands then fail with a clear error
// instead of panicking.
type Services struct {
	Search      driving.SearchService
	Ask         driving.AskService
	Ingest      driving.IngestService
	Documents   driven.DocumentStore
	VectorStore driven.VectorStore
	Config      driven.ConfigStore
}

var services Services

// Configure wires the service ports into the command tree.
func Configure(s Services) {
	services = s
}

var (
	verbose   bool
	workspace string
)

var rootCmd = &cobra.Command{
	Use:   "citeview",
	Short: "Ask questions of your documents, with citations",
	Long: `Citeview indexes your documents and answers questions about them.

Every claim in an answer carries an inline citation pointing back to the
exact chunk of the source document it came from. Documents are grouped
into workspaces; retrieval, history, and deletion never cross a
workspace boundary.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace to operate in (default from config)")
}

// currentWorkspace resolves the active workspace: the flag wins, then
// the configured default.
func currentWorkspace() string {
	if workspace != "" {
		return workspace
	}
	if services.Config != nil {
		if ws := services.Config.GetString("workspace.default"); ws != "" {
			return ws
		}
	}
	return "default"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx flowing into every
// command's cmd.Context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
