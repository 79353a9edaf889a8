package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names
const (
	ToolWhoIsOn         = "vc_who_is_on"
	ToolListSubscribers = "vc_list_subscribers"
	ToolSubscribe       = "vc_subscribe"
	ToolUnsubscribe     = "vc_unsubscribe"
)

// NewServer creates an MCP server exposing the notifier's tools
func NewServer(client *Client, version string) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{
		Name:    "vc-notifier",
		Version: version,
	}, nil)

	RegisterTools(server, NewHandler(client))
	return server
}

// RegisterTools registers all notifier tools on server
func RegisterTools(server *sdk.Server, h *Handler) {
	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolWhoIsOn,
		Description: "List who is currently in which voice channel. Optionally restrict to one guild.",
	}, h.WhoIsOn)

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolListSubscribers,
		Description: "List the usernames mentioned in a guild's voice activity notifications.",
	}, h.ListSubscribers)

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolSubscribe,
		Description: "Mention a username in a guild's voice activity notifications.",
	}, h.Subscribe)

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolUnsubscribe,
		Description: "Stop mentioning a username in a guild's voice activity notifications.",
	}, h.Unsubscribe)
}
