// Traduco is a terminal frontend for an external PDF-translation engine. It
// keeps a provider/model registry in a persisted settings document, queues
// input documents per session, and streams the engine's progress into an
// interactive TUI. Besides the default TUI it has a headless batch mode, an
// interactive settings editor, and an MCP server exposing the same
// operations to agent tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/session"
	"github.com/mireiacs/traduco/pkg/settings"
)

const defaultEngineURL = "http://127.0.0.1:8765"

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "settings":
			settingsCmd := flag.NewFlagSet("settings", flag.ExitOnError)
			settingsCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: traduco settings [flags]\n\nEdit the settings document interactively.\n\nFlags:\n")
				settingsCmd.PrintDefaults()
			}
			path := settingsCmd.String("settings", "", "path to settings file (default: user config dir)")
			_ = settingsCmd.Parse(os.Args[2:])

			if err := runSettingsEditor(resolveSettingsPath(*path)); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		case "run":
			runCmd := flag.NewFlagSet("run", flag.ExitOnError)
			runCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: traduco run [flags] [file ...]\n\nTranslate files without the TUI and print a report.\n\nFlags:\n")
				runCmd.PrintDefaults()
			}
			path := runCmd.String("settings", "", "path to settings file (default: user config dir)")
			engineURL := runCmd.String("engine", defaultEngineURL, "translation engine base URL")
			manifestPath := runCmd.String("manifest", "", "path to a YAML run manifest")
			pages := runCmd.String("pages", "", "page range to translate, e.g. 1,2,-3,5- (default: all)")
			envFile := runCmd.String("env", ".env", "path to .env file (ignored if missing)")
			_ = runCmd.Parse(os.Args[2:])

			if err := loadDotEnv(*envFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			setupLogging(slog.LevelInfo)

			if err := runHeadless(*path, *engineURL, *manifestPath, *pages, runCmd.Args()); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		case "mcp":
			mcpCmd := flag.NewFlagSet("mcp", flag.ExitOnError)
			mcpCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: traduco mcp [flags]\n\nServe the registry and translation operations over MCP on stdio.\n\nFlags:\n")
				mcpCmd.PrintDefaults()
			}
			path := mcpCmd.String("settings", "", "path to settings file (default: user config dir)")
			engineURL := mcpCmd.String("engine", defaultEngineURL, "translation engine base URL")
			_ = mcpCmd.Parse(os.Args[2:])

			// Stdout carries the protocol; logs must stay on stderr.
			setupLogging(slog.LevelWarn)

			if err := runMCP(*path, *engineURL); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: traduco [flags] [file ...]\n       traduco <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  settings  Edit the settings document interactively\n  run       Translate files without the TUI and print a report\n  mcp       Serve the registry and translation operations over MCP\n")
	}

	settingsPath := flag.String("settings", "", "path to settings file (default: user config dir)")
	engineURL := flag.String("engine", defaultEngineURL, "translation engine base URL")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; keep log noise down.
	setupLogging(slog.LevelError)

	if err := runTUI(*settingsPath, *engineURL, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(settingsPath, engineURL string, files []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := settings.Open(resolveSettingsPath(settingsPath))
	if err != nil {
		return err
	}

	mgr := session.NewManager(store, engine.NewRemote(engineURL))
	sess := mgr.Open()
	defer mgr.Close(sess.ID())

	for _, path := range files {
		addLocalFile(sess, path)
	}

	model := newAppModel(ctx, sess, mgr.Events())

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Send the program reference so the model can start the bridge goroutine.
	go func() {
		p.Send(programReadyMsg{program: p})
	}()

	_, err = p.Run()
	return err
}
