package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/pagemeta/config"
	"github.com/use-agent/pagemeta/fetch"
	"github.com/use-agent/pagemeta/models"
	"github.com/use-agent/pagemeta/scraper"
)

// metadataScraper is the pipeline the scrape_metadata tool runs.
type metadataScraper interface {
	Scrape(ctx context.Context, targetURL string) (*models.ScrapedMetadata, error)
}

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	sc := scraper.NewScraper(fetch.NewClient(cfg.Fetch), cfg.Fetch)

	s := server.NewMCPServer(
		"pagemeta",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_metadata",
		mcp.WithDescription("Fetch a single web page and return its preview metadata (title, description, category, image) as JSON. The image is inlined as a base64 data URI when it can be downloaded."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL of the page"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeMetadata(sc))

	helloTool := mcp.NewTool("hello",
		mcp.WithDescription("Return a greeting for the given name."),
		mcp.WithString("name",
			mcp.Description("Name to greet (default: 'World')"),
		),
	)
	s.AddTool(helloTool, handleHello())

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeMetadata(sc metadataScraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url := request.GetString("url", "")
		if url == "" {
			return mcp.NewToolResultError(models.MsgURLRequired), nil
		}

		meta, err := sc.Scrape(ctx, url)
		if err != nil {
			slog.Error("scrape failed", "url", url, "error", err)
			var scrapeErr *models.ScrapeError
			if errors.As(err, &scrapeErr) {
				return mcp.NewToolResultError(scrapeErr.PublicMessage()), nil
			}
			return mcp.NewToolResultError(models.MsgScrapeFailed), nil
		}

		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(models.MsgScrapeFailed), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleHello() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := models.GreetRequest{Name: request.GetString("name", "")}
		req.Defaults()
		return mcp.NewToolResultText(fmt.Sprintf("Hello, %s!", req.Name)), nil
	}
}
