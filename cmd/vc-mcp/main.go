package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vcnotifier/vc-notifier/internal/mcp"
)

// vc-mcp exposes the notifier's local HTTP API as MCP tools over stdio.
// VC_NOTIFIER_API_URL points at the running notifier.

const version = "v1.0.0"

func main() {
	// Load .env file; stdout carries the protocol, so log goes to stderr
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := mcp.NewClient(os.Getenv("VC_NOTIFIER_API_URL"))
	server := mcp.NewServer(client, version)

	if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
