package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		appName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

func urlParam(description string) mcp.ToolOption {
	return mcp.WithString("url",
		mcp.Description(description),
		mcp.Required(),
	)
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Extract video or playlist metadata: title, uploader, upload date (DD/MM/YY), description and caption availability. For playlists, returns metadata for every video. Videos without captions cannot be summarized."),
		urlParam("YouTube video or playlist URL"),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Get the existing YouTube captions of a video as plain text. For playlists, returns the transcripts of all videos separated by headers. Fails if no captions are available."),
		urlParam("YouTube video or playlist URL"),
		mcp.WithBoolean("timestamps",
			mcp.Description("Prefix each caption line with its start time"),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("summarize_youtube",
		mcp.WithDescription("Summarize a video from its captions: a title and 6-8 bullet points in markdown. Long transcripts are summarized part by part. Calls the configured generation backend."),
		urlParam("YouTube video URL or ID"),
	), s.taskHandler(TaskSummarize))

	s.mcpServer.AddTool(mcp.NewTool("generate_video_ideas",
		mcp.WithDescription("Propose 3 new video ideas inspired by a video's captions, each with a bold title and a two-line description. Calls the configured generation backend."),
		urlParam("YouTube video URL or ID"),
	), s.taskHandler(TaskIdeate))
}

// handleGetMetadata implements the get_youtube_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	logInfo(logMCP, "get_youtube_metadata %s", url)

	links, err := s.app.ExpandLinks(ctx, []string{url})
	if err != nil {
		logError(logMCP, "expanding %s: %v", url, err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	for i, link := range links {
		metadata, err := s.app.Metadata(ctx, link)
		if err != nil {
			logError(logMCP, "metadata for %s: %v", link, err)
			if len(links) == 1 {
				return mcp.NewToolResultErrorFromErr("metadata error", err), nil
			}
			fmt.Fprintf(&buf, "Video %d (%s): metadata unavailable: %v\n\n", i+1, link, err)
			continue
		}
		if len(links) > 1 {
			fmt.Fprintf(&buf, "Video %d of %d\n", i+1, len(links))
		}
		writeMetadata(&buf, link, metadata)
		buf.WriteString("\n")
	}

	return mcp.NewToolResultText(strings.TrimSpace(buf.String())), nil
}

func writeMetadata(buf *strings.Builder, link string, metadata *VideoMetadata) {
	rec := NewRecord(metadata.ID, metadata)
	fmt.Fprintf(buf, "Link: %s\n", link)
	fmt.Fprintf(buf, "Title: %s\n", rec.Title)
	fmt.Fprintf(buf, "Uploader: %s\n", rec.Uploader)
	fmt.Fprintf(buf, "Upload Date: %s\n", rec.UploadDate)
	fmt.Fprintf(buf, "Duration: %.0f seconds\n", metadata.Duration)
	fmt.Fprintf(buf, "Description: %s\n", rec.Description)
	fmt.Fprintf(buf, "Has Captions: %t\n", metadata.HasCaptions)

	if len(metadata.Tags) > 0 {
		fmt.Fprintf(buf, "Tags: %s\n", strings.Join(metadata.Tags, ", "))
	}
	if len(metadata.Categories) > 0 {
		fmt.Fprintf(buf, "Categories: %s\n", strings.Join(metadata.Categories, ", "))
	}
	for _, ch := range metadata.Chapters {
		fmt.Fprintf(buf, "Chapter (%.0f-%.0f): %s\n", ch.StartTime, ch.EndTime, ch.Title)
	}
}

// handleGetTranscript implements the get_youtube_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	timestamps := request.GetBool("timestamps", false)
	logInfo(logMCP, "get_youtube_transcript %s (timestamps=%t)", url, timestamps)

	links, err := s.app.ExpandLinks(ctx, []string{url})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("transcript error", err), nil
	}

	var buf strings.Builder
	fetched := 0
	for i, link := range links {
		lines, err := s.app.TranscriptLines(ctx, link)
		if err != nil {
			logError(logMCP, "transcript for %s: %v", link, err)
			if len(links) == 1 {
				return mcp.NewToolResultErrorFromErr("no captions available - use get_youtube_metadata to check caption availability", err), nil
			}
			continue
		}
		fetched++
		if len(links) > 1 {
			fmt.Fprintf(&buf, "## Video %d of %d: %s\n\n", i+1, len(links), link)
		}
		if timestamps {
			buf.WriteString(FormatTimestampedTranscript(lines))
		} else {
			buf.WriteString(JoinTranscript(lines))
		}
		buf.WriteString("\n\n")
	}

	if fetched == 0 {
		return mcp.NewToolResultError("no captions available for any video in the playlist"), nil
	}

	return mcp.NewToolResultText(strings.TrimSpace(buf.String())), nil
}

// taskHandler implements the generation tools
func (s *MCPServer) taskHandler(task Task) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url parameter is required and must be a string"), nil
		}
		logInfo(logMCP, "%s %s", task, url)

		rec, err := s.app.Record(ctx, url)
		if err != nil {
			logError(logMCP, "%s %s: %v", task, url, err)
			return mcp.NewToolResultErrorFromErr("metadata error", err), nil
		}

		rec, err = s.app.Process(ctx, rec, task)
		if err != nil {
			logError(logMCP, "%s %s: %v", task, url, err)
			return mcp.NewToolResultErrorFromErr(fmt.Sprintf("%s failed", task), err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("# %s\n%s\n\n%s", rec.DisplayTitle(), rec.Link, rec.Results)), nil
	}
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	logInfo(logMCP, "starting %s transport", transport)
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
