package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mesdx/classlens/internal/db"
	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/lens"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const (
	toolFindClasses     = "classlens.findClasses"
	toolTestableMethods = "classlens.testableMethods"
	toolHistory         = "classlens.history"

	snapshotCacheSize = 256
)

// FindClassesArgs is the input for the findClasses tool.
type FindClassesArgs struct {
	FilePath string `json:"filePath" jsonschema:"path of the Java file, absolute or repo-relative"`
}

// TestableMethodsArgs is the input for the testableMethods tool.
type TestableMethodsArgs struct {
	FilePath    string `json:"filePath" jsonschema:"path of the Java file, absolute or repo-relative"`
	ClassName   string `json:"className,omitempty" jsonschema:"name of the class to inspect"`
	Line        int    `json:"line,omitempty" jsonschema:"1-based line of the class declaration"`
	IncludeBody bool   `json:"includeBody,omitempty" jsonschema:"also return the scanned class body text"`
}

// HistoryArgs is the input for the history tool.
type HistoryArgs struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of entries (default 20)"`
	FilePath string `json:"filePath,omitempty" jsonschema:"only return entries for this file"`
}

// TestableMethodsResult is the structured output of the testableMethods tool.
type TestableMethodsResult struct {
	lens.Activation
	Body string `json:"body,omitempty"`
}

func newMcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long:  "Start the Model Context Protocol server over stdio so agents can list class markers and testable methods.",
		RunE:  runMcp,
	}
}

func runMcp(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	// Nothing may leak into the stdio JSON-RPC transport.
	closeLog, err := initLog(e.StateDir, "mcp")
	if err != nil {
		return fmt.Errorf("failed to initialize mcp log: %w", err)
	}
	defer closeLog()

	c, closeStore := e.newController(nil, panel.TerminalRenderer{Plain: true})
	defer closeStore()

	cache, err := lens.NewSnapshotCache(snapshotCacheSize, e.lensOptions())
	if err != nil {
		return err
	}
	defer cache.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "classlens",
		Version: Version,
	}, nil)
	registerTools(server, e, c, cache)

	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server, e *env, c *lens.Controller, cache *lens.SnapshotCache) {
	// Activation switches the controller's active document.
	var activateMu sync.Mutex

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolFindClasses,
		Description: "List the class declarations of a Java file. Each marker has the class name, its 1-based line and column, and the lens command that activates it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FindClassesArgs) (*mcp.CallToolResult, any, error) {
		snap, err := findClasses(e, cache, args.FilePath)
		if err != nil {
			return toolError(err), nil, nil
		}
		var sb strings.Builder
		if len(snap.Lenses) == 0 {
			fmt.Fprintf(&sb, "No class declarations in %s\n", e.relPath(snap.Path))
		}
		for _, d := range snap.Decorations {
			fmt.Fprintf(&sb, "%s:%d:%d %s\n", e.relPath(snap.Path), d.Range.Start.Line+1, d.Range.Start.Character+1, d.Class.Name)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: sb.String()}},
		}, snap, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolTestableMethods,
		Description: "Show Testable Methods: list the method names declared in the body of one class. Select the class by className or line; a file with a single class needs neither. Nested class members are included.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TestableMethodsArgs) (*mcp.CallToolResult, any, error) {
		activateMu.Lock()
		res, err := testableMethods(ctx, e, c, args)
		activateMu.Unlock()
		if err != nil {
			return toolError(err), nil, nil
		}
		text := fmt.Sprintf("%s in %s: %s", res.Class, e.relPath(res.Path), strings.Join(res.Methods, ", "))
		if len(res.Methods) == 0 {
			text = fmt.Sprintf("%s in %s: no methods found", res.Class, e.relPath(res.Path))
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolHistory,
		Description: "List recent Show Testable Methods runs, newest first.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, any, error) {
		entries, err := history(ctx, e, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		var sb strings.Builder
		for _, en := range entries {
			fmt.Fprintf(&sb, "%s %s:%d %s: %s\n", en.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				e.relPath(en.Document), en.Line+1, en.Class, strings.Join(en.Methods, ", "))
		}
		if len(entries) == 0 {
			sb.WriteString("No history yet\n")
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: sb.String()}},
		}, map[string]any{"entries": entries}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	log.Printf("tool error: %v", err)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)}},
		IsError: true,
	}
}

// resolveToolPath turns a tool path argument into an absolute path. Relative
// paths are taken from the repo root.
func resolveToolPath(e *env, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("filePath is required")
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.RepoRoot, p)
	}
	return filepath.Clean(p), nil
}

// findClasses computes the markers of a Java file, through cache when given.
func findClasses(e *env, cache *lens.SnapshotCache, filePath string) (lens.Snapshot, error) {
	path, err := resolveToolPath(e, filePath)
	if err != nil {
		return lens.Snapshot{}, err
	}
	if document.DetectLang(path) != document.LangJava {
		return lens.Snapshot{}, fmt.Errorf("%s is not a Java file", filePath)
	}
	if cache != nil {
		return cache.Load(path)
	}
	doc, err := document.Load(path, 1)
	if err != nil {
		return lens.Snapshot{}, err
	}
	return lens.Compute(doc, e.lensOptions()), nil
}

func testableMethods(ctx context.Context, e *env, c *lens.Controller, args TestableMethodsArgs) (*TestableMethodsResult, error) {
	path, err := resolveToolPath(e, args.FilePath)
	if err != nil {
		return nil, err
	}
	a, err := activate(ctx, c, path, args.ClassName, args.Line)
	if err != nil {
		return nil, err
	}
	res := &TestableMethodsResult{Activation: *a}
	if args.IncludeBody {
		if doc := c.Active(); doc != nil && a.Offset <= a.BodyEnd && a.BodyEnd <= len(doc.Text) {
			res.Body = doc.Text[a.Offset:a.BodyEnd]
		}
	}
	return res, nil
}

func history(ctx context.Context, e *env, args HistoryArgs) ([]db.Entry, error) {
	store, closeStore, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	if args.FilePath == "" {
		return store.Recent(ctx, args.Limit)
	}
	path, err := resolveToolPath(e, args.FilePath)
	if err != nil {
		return nil, err
	}
	entries, err := store.ForDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	if args.Limit > 0 && len(entries) > args.Limit {
		entries = entries[:args.Limit]
	}
	return entries, nil
}
