package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/session"
	"github.com/mireiacs/traduco/pkg/settings"
)

type selectModelArgs struct {
	ModelID string `json:"model_id" jsonschema:"id of the model configuration to activate (empty clears the selection)"`
}

type translateArgs struct {
	Path  string `json:"path" jsonschema:"path to the PDF to translate"`
	Name  string `json:"name,omitempty" jsonschema:"display name for the file (defaults to its base name)"`
	Pages string `json:"pages,omitempty" jsonschema:"page range to translate, e.g. 1,2,-3,5- (empty translates all pages)"`
}

// runMCP serves the registry and translation operations over MCP on stdio,
// so agent tooling can drive the same configuration store and session
// orchestrator as the TUI.
func runMCP(settingsPath, engineURL string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := settings.Open(resolveSettingsPath(settingsPath))
	if err != nil {
		return err
	}

	mgr := session.NewManager(store, engine.NewRemote(engineURL))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "traduco",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List configured providers and model configurations, marking the active model.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		return textResult(formatModelList(store.Snapshot())), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_model",
		Description: "Set the active model configuration for new translation runs.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args selectModelArgs) (*mcp.CallToolResult, any, error) {
		if err := store.SelectModel(args.ModelID); err != nil {
			return nil, nil, err
		}
		if args.ModelID == "" {
			return textResult("selection cleared"), nil, nil
		}
		return textResult("selected " + args.ModelID), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "translate",
		Description: "Translate one PDF with the active model and return the produced files.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args translateArgs) (*mcp.CallToolResult, any, error) {
		if args.Path == "" {
			return nil, nil, fmt.Errorf("path is required")
		}

		sess := mgr.Open()
		defer mgr.Close(sess.ID())

		if args.Name != "" {
			sess.AddFile(args.Name, args.Path)
		} else {
			addLocalFile(sess, args.Path)
		}
		sess.SetPages(args.Pages)

		if err := sess.Run(ctx); err != nil {
			return nil, nil, err
		}

		st := sess.State()
		if len(st.Results) == 0 {
			return textResult("translation finished with no output files"), nil, nil
		}

		var sb strings.Builder
		for _, a := range st.Results {
			fmt.Fprintf(&sb, "%s\t%s\n", a.Name, a.Path)
		}
		return textResult(sb.String()), nil, nil
	})

	transport := &mcp.IOTransport{
		Reader: io.NopCloser(os.Stdin),
		Writer: nopWriteCloser{os.Stdout},
	}

	return server.Run(ctx, transport)
}

func formatModelList(snap settings.Settings) string {
	var sb strings.Builder

	for _, p := range snap.Providers {
		fmt.Fprintf(&sb, "%s (%s)\n", p.Name, p.ID)
		for _, m := range p.Models {
			marker := " "
			if m.ID == snap.SelectedModelID {
				marker = "*"
			}
			fmt.Fprintf(&sb, "  %s %s\t%s\t%s\n", marker, m.ID, m.DisplayName, m.ModelName)
		}
	}

	if sb.Len() == 0 {
		return "no providers configured"
	}
	return sb.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
