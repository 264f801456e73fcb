package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/sitebrief/models"
)

func main() {
	apiURL := os.Getenv("SITEBRIEF_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	client := newAPIClient(apiURL)

	s := server.NewMCPServer(
		"sitebrief",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_page",
		mcp.WithDescription("Load a web page in a real browser and return its readable text and brand name. Falls back to raw HTML, OCR of a screenshot, or a remote reader when the page is blocked or mostly empty."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
	)
	s.AddTool(extractTool, extractHandler(client))

	briefTool := mcp.NewTool("generate_brief",
		mcp.WithDescription("Extract a web page and publish it as a PDF report. Returns the public URL of the PDF."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to summarise"),
		),
		mcp.WithString("name",
			mcp.Description("Requester name recorded with the submission"),
		),
		mcp.WithString("email",
			mcp.Description("Requester email recorded with the submission"),
		),
	)
	s.AddTool(briefTool, briefHandler(client))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func extractHandler(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url parameter is required"), nil
		}

		resp, err := client.Extract(ctx, url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(formatExtraction(resp)), nil
		}
		return mcp.NewToolResultText(formatExtraction(resp)), nil
	}
}

func briefHandler(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url parameter is required"), nil
		}

		resp, err := client.Submit(ctx, models.SubmitRequest{
			URL:   url,
			Name:  request.GetString("name", ""),
			Email: request.GetString("email", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("PDF: %s\nSession: %s", resp.PDFURL, resp.SessionID)), nil
	}
}
