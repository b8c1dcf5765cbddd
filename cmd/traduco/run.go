package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/session"
	"github.com/mireiacs/traduco/pkg/settings"
)

// runHeadless translates the given files without the TUI, echoing progress
// to stderr and printing a rendered markdown report to stdout. Manifest
// overrides are applied to a private copy of the settings document so the
// user's persisted settings stay untouched.
func runHeadless(settingsPath, engineURL, manifestPath, pages string, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var man runManifest
	if manifestPath != "" {
		m, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		man = m
	}

	store, cleanup, err := openRunStore(resolveSettingsPath(settingsPath), man)
	if err != nil {
		return err
	}
	defer cleanup()

	if man.Engine != "" {
		engineURL = man.Engine
	}
	if man.Pages != "" {
		pages = man.Pages
	}

	mgr := session.NewManager(store, engine.NewRemote(engineURL))
	sess := mgr.Open()
	defer mgr.Close(sess.ID())

	for _, f := range man.Files {
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		sess.AddFile(name, f.Path)
	}
	for _, path := range args {
		addLocalFile(sess, path)
	}
	sess.SetPages(pages)

	done := make(chan struct{})
	sub := mgr.Events().Subscribe(128)
	go func() {
		defer close(done)
		echoProgress(sub.C)
	}()

	start := time.Now()
	runErr := sess.Run(ctx)

	mgr.Events().Unsubscribe(sub)
	<-done

	fmt.Println(renderReport(buildReport(sess.State(), time.Since(start))))

	return runErr
}

// openRunStore opens the settings store, cloning the document into a fresh
// temp directory first when the manifest carries per-run overrides. The
// returned cleanup removes the temp copy and is a no-op otherwise.
func openRunStore(path string, man runManifest) (*settings.Store, func(), error) {
	cleanup := func() {}

	hasOverrides := man.LangIn != "" || man.LangOut != "" || man.OutputDir != ""
	if hasOverrides {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, err
		}

		dir, err := os.MkdirTemp("", "traduco-run-")
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { os.RemoveAll(dir) }

		path = filepath.Join(dir, "settings.json")
		if data != nil {
			if err := os.WriteFile(path, data, 0o600); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	}

	store, err := settings.Open(path)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if hasOverrides {
		tr := store.Snapshot().Translation
		if man.LangIn != "" {
			tr.LangIn = man.LangIn
		}
		if man.LangOut != "" {
			tr.LangOut = man.LangOut
		}
		if err := store.SetTranslation(tr); err != nil {
			cleanup()
			return nil, nil, err
		}

		if man.OutputDir != "" {
			paths := store.Snapshot().Paths
			paths.OutputDir = man.OutputDir
			if err := store.SetPaths(paths); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	}

	return store, cleanup, nil
}

// echoProgress prints a line per notable session event until the channel
// closes. Progress events are echoed only on stage changes to keep the
// output readable.
func echoProgress(ch <-chan session.Event) {
	lastStage := ""
	for ev := range ch {
		switch ev.Kind {
		case session.EventFileStart:
			fmt.Fprintf(os.Stderr, "translating %s\n", ev.File)
		case session.EventProgress:
			e, ok := ev.Data.(engine.Event)
			if !ok || e.Stage == lastStage {
				continue
			}
			lastStage = e.Stage
			fmt.Fprintf(os.Stderr, "  %s %s\n", fmtPercent(e.Progress), e.Stage)
		case session.EventEngineError:
			if msg, ok := ev.Data.(string); ok {
				fmt.Fprintf(os.Stderr, "  engine error: %s\n", msg)
			}
		case session.EventFileDone:
			fmt.Fprintf(os.Stderr, "done %s\n", ev.File)
		}
	}
}

// buildReport renders the run outcome as markdown.
func buildReport(st session.State, elapsed time.Duration) string {
	var sb strings.Builder

	sb.WriteString("# Translation report\n\n")
	sb.WriteString(fmt.Sprintf("- Status: **%s**\n", st.Status))
	sb.WriteString(fmt.Sprintf("- Duration: %s\n", fmtDuration(elapsed)))
	sb.WriteString(fmt.Sprintf("- Files queued: %d\n", len(st.Files)))

	if len(st.Results) > 0 {
		sb.WriteString("\n## Results\n\n")
		for _, a := range st.Results {
			sb.WriteString(fmt.Sprintf("- `%s` — %s\n", a.Name, a.Path))
		}
	}

	if st.Err != nil {
		sb.WriteString("\n## Error\n\n")
		sb.WriteString(st.Err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderReport formats markdown for the terminal, falling back to the raw
// text when rendering fails.
func renderReport(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
