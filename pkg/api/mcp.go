package api

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/kit"
	"github.com/hazyhaar/churn-insights/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the dashboard MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, sess *session.Session, cfg Config) {
	eps := newEndpoints(sess, cfg)
	registerLoadExport(srv, eps)
	registerSnapshot(srv, eps)
	registerOptions(srv, eps)
	registerJourney(srv, eps)
	registerRecords(srv, eps)
	registerTable(srv, eps)
}

// criteriaParams are the filter arguments shared by the view tools.
func criteriaParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("status", mcp.Description("Comma-separated statuses (e.g. Active,Lapsed)")),
		mcp.WithString("location", mcp.Description("Comma-separated primary locations")),
		mcp.WithString("membership", mcp.Description("Comma-separated membership names")),
		mcp.WithString("from", mcp.Description("Earliest purchase date, inclusive (e.g. 2025-01-01)")),
		mcp.WithString("to", mcp.Description("Latest purchase date, inclusive")),
		mcp.WithString("q", mcp.Description("Case-insensitive search over name, member id, location and membership")),
		mcp.WithString("preset", mcp.Description("Named filter preset: lapsed")),
	}
}

func registerLoadExport(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("load_export",
		mcp.WithDescription("Load a membership export (CSV, TSV or XLSX) from a URL or inline CSV text, replacing the current dataset."),
		mcp.WithString("url", mcp.Description("HTTP(S) URL of the export; only when the server allows url uploads")),
		mcp.WithString("content", mcp.Description("Inline delimited text, first row is the header")),
		mcp.WithString("format", mcp.Description("Input format: csv, tsv, txt or xlsx (default: from url extension, else csv)")),
		mcp.WithString("delimiter", mcp.Description("Field delimiter override")),
		mcp.WithString("encoding", mcp.Description("Text encoding (e.g. windows-1252)")),
	)

	kit.RegisterMCPTool(srv, tool, eps.upload, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		url := kit.StringArg(req, "url")
		content, _ := req.GetArguments()["content"].(string)
		if url == "" && content == "" {
			return nil, fmt.Errorf("one of url or content is required")
		}
		r := &uploadReq{URL: url, Opts: ingest.Options{Source: "inline"}}
		if url != "" {
			r.Opts.Source = url
		} else {
			r.Body = strings.NewReader(content)
		}
		r.Opts.Format = kit.StringArg(req, "format")
		r.Opts.Delimiter, _ = req.GetArguments()["delimiter"].(string)
		r.Opts.Encoding = kit.StringArg(req, "encoding")
		return &kit.MCPDecodeResult{Request: r}, nil
	})
}

func registerSnapshot(srv *server.MCPServer, eps *endpoints) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Churn analytics for the loaded dataset: totals, rates, location breakdown, monthly churn and the location by month matrix."),
	}, criteriaParams()...)
	tool := mcp.NewTool("churn_snapshot", opts...)

	kit.RegisterMCPTool(srv, tool, eps.snapshot, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		c, err := criteriaArgs(req.GetArguments())
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &criteriaReq{Criteria: c}}, nil
	})
}

func registerOptions(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("filter_options",
		mcp.WithDescription("List the distinct statuses, locations and membership names available as filters."),
	)

	kit.RegisterMCPTool(srv, tool, eps.options, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerJourney(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("member_journey",
		mcp.WithDescription("All membership periods of one member ordered by start date, with win-back detection."),
		mcp.WithString("member_id", mcp.Required(), mcp.Description("The Member Id")),
	)

	kit.RegisterMCPTool(srv, tool, eps.journey, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &journeyReq{MemberID: kit.StringArg(req, "member_id")}}, nil
	})
}

func registerRecords(srv *server.MCPServer, eps *endpoints) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Canonical member records matching the filters, in file order."),
		mcp.WithNumber("offset", mcp.Description("Records to skip")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to return (default 50)")),
	}, criteriaParams()...)
	tool := mcp.NewTool("records", opts...)

	kit.RegisterMCPTool(srv, tool, eps.records, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		c, err := criteriaArgs(req.GetArguments())
		if err != nil {
			return nil, err
		}
		r := &recordsReq{
			Criteria: c,
			Offset:   max(kit.IntArg(req, "offset", 0), 0),
			Limit:    kit.IntArg(req, "limit", 50),
		}
		if r.Limit <= 0 {
			r.Limit = 50
		}
		return &kit.MCPDecodeResult{Request: r}, nil
	})
}

func registerTable(srv *server.MCPServer, eps *endpoints) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Group matching records by one canonical field with counts and revenue."),
		mcp.WithString("group_by", mcp.Description("Canonical field name (default: Primary Location)")),
	}, criteriaParams()...)
	tool := mcp.NewTool("group_records", opts...)

	kit.RegisterMCPTool(srv, tool, eps.table, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		c, err := criteriaArgs(req.GetArguments())
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &tableReq{Criteria: c, GroupBy: kit.StringArg(req, "group_by")}}, nil
	})
}

func criteriaArgs(args map[string]any) (filter.Criteria, error) {
	return buildCriteria(func(k string) string {
		v, _ := args[k].(string)
		return v
	})
}
