// Package toolserver exposes path resolution and quantity extraction as
// Model Context Protocol tools.
package toolserver

import (
	"context"
	"fmt"

	"github.com/agentic-research/nomadkit/internal/docpath"
	"github.com/agentic-research/nomadkit/internal/materials"
	"github.com/agentic-research/nomadkit/internal/quantity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"
)

// ArchiveFetcher is the part of the Archive Service client the tools use.
type ArchiveFetcher interface {
	quantity.RawFetcher
	Archive(ctx context.Context, entryID string) (docpath.Node, error)
}

// Tools holds the dependencies of the tool handlers.
type Tools struct {
	// Archive may be nil; tools then only accept inline documents.
	Archive ArchiveFetcher
	Logger  *zap.Logger
}

func (t *Tools) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

// NewServer registers all tools on a new MCP server.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer("nomadkit", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("resolve_path",
		mcp.WithDescription("Resolve a slash-delimited path (e.g. archive/run/0/program/name) in an archive document. Pointers of the form #/a/b are followed."),
		mcp.WithString("document", mcp.Description("Archive document as JSON text")),
		mcp.WithString("entry_id", mcp.Description("Fetch the document from the Archive Service instead")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path expression")),
		mcp.WithBoolean("strict", mcp.Description("Fail on absent keys instead of returning null")),
		mcp.WithString("reference_root", mcp.Description("Path that pointers are relative to, e.g. archive")),
	), t.ResolvePath)

	s.AddTool(mcp.NewTool("extract_quantity",
		mcp.WithDescription("Compute a physical quantity (DOS, band gap, total energy, basis functions, k-points) from an archive document."),
		mcp.WithString("document", mcp.Description("Archive document as JSON text")),
		mcp.WithString("entry_id", mcp.Description("Fetch the document from the Archive Service instead")),
		mcp.WithString("quantity", mcp.Required(), mcp.Enum(quantity.Names()...)),
		mcp.WithString("energy_variant", mcp.Enum(string(quantity.EnergyFromWorkflow), string(quantity.EnergyFromLastCalculation))),
		mcp.WithString("kpoints_variant", mcp.Enum(string(quantity.KPointsFromControlIn), string(quantity.KPointsFromParsed))),
	), t.ExtractQuantity)

	s.AddTool(mcp.NewTool("list_ids",
		mcp.WithDescription("List the material ids of a local materials database."),
		mcp.WithString("database", mcp.Required(), mcp.Description("Path to the SQLite materials database")),
	), t.ListIDs)

	return s
}

// ResolvePath handles resolve_path.
func (t *Tools) ResolvePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := t.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r := docpath.New(
		docpath.Strict(req.GetBool("strict", false)),
		docpath.ReferenceRoot(req.GetString("reference_root", "")),
	)
	n, err := r.Resolve(doc, path)
	if err != nil {
		t.logger().Debug("resolve failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(oj.JSON(n.Value(), &oj.Options{Sort: true})), nil
}

// ExtractQuantity handles extract_quantity.
func (t *Tools) ExtractQuantity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("quantity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := t.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := quantity.Options{
		Energy:  quantity.EnergyVariant(req.GetString("energy_variant", string(quantity.EnergyFromWorkflow))),
		KPoints: quantity.KPointsVariant(req.GetString("kpoints_variant", string(quantity.KPointsFromControlIn))),
	}
	if t.Archive != nil {
		opts.Fetcher = t.Archive
	}
	v, err := quantity.Extract(ctx, doc, name, opts)
	if err != nil {
		t.logger().Debug("extract failed", zap.String("quantity", name), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(oj.JSON(v)), nil
}

// ListIDs handles list_ids.
func (t *Tools) ListIDs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("database")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	db, err := materials.Open(path, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = db.Close() }()

	ids, err := db.IDs()
	if err != nil {
		t.logger().Warn("list ids failed", zap.String("database", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(materials.FormatIDs(ids, nil)), nil
}

func (t *Tools) document(ctx context.Context, req mcp.CallToolRequest) (docpath.Node, error) {
	if text := req.GetString("document", ""); text != "" {
		return docpath.Parse([]byte(text))
	}
	id := req.GetString("entry_id", "")
	if id == "" {
		return nil, fmt.Errorf("either document or entry_id is required")
	}
	if t.Archive == nil {
		return nil, fmt.Errorf("entry_id given but no Archive Service is configured")
	}
	return t.Archive.Archive(ctx, id)
}
