package mission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pblhub/missiond/kit"
)

// RegisterMCP registers the mission tools on an MCP server so agent clients
// can browse the same content the HTTP surface serves.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerListTool(srv)
	s.registerSectionsTool(srv)
	s.registerRequirementsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

// --- missions_list ---

func (s *Service) registerListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "missions_list",
		Description: "List the IDs of all cached missions.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		ids, err := s.store.ListMissions(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"missions": ids}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- mission_sections ---

type sectionsReq struct {
	MissionID string `json:"missionId"`
}

func (s *Service) registerSectionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "mission_sections",
		Description: "Return the classified sections of one mission. Accepts a mission ID or a Notion page ID, hyphenated or bare.",
		InputSchema: inputSchema(map[string]any{
			"missionId": map[string]any{"type": "string", "description": "Mission ID or Notion page ID"},
		}, []string{"missionId"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*sectionsReq)
		pageID, missionID := r.MissionID, ""
		if s.registry != nil {
			if entry, ok := s.registry.Find(r.MissionID); ok {
				pageID, missionID = entry.NotionPageID, entry.MissionID
			}
		}
		return s.FetchSections(ctx, pageID, missionID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r sectionsReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.MissionID == "" {
			return nil, fmt.Errorf("missionId is required")
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- mission_requirements ---

type requirementsReq struct {
	MissionID string `json:"missionId"`
}

func (s *Service) registerRequirementsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "mission_requirements",
		Description: "Extract the checklist requirements of one mission from its guidelines section.",
		InputSchema: inputSchema(map[string]any{
			"missionId": map[string]any{"type": "string", "description": "Mission ID or Notion page ID"},
		}, []string{"missionId"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*requirementsReq)
		reqs, err := s.Requirements(ctx, r.MissionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"requirements": reqs}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r requirementsReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.MissionID == "" {
			return nil, fmt.Errorf("missionId is required")
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
