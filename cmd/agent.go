package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/rag"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/registry"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var agentModel string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Expose ingestion and chat as MCP tools over stdio",
	Long: `Run an MCP server (stdio transport) so LLM agents can ingest project
directories and chat against them with the same backend the HTTP API uses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent()
		if err != nil {
			return err
		}

		s := server.NewMCPServer(
			"projectnav",
			"0.1.0",
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		)
		s.AddTool(ingestToolDef(), a.handleIngest)
		s.AddTool(listToolDef(), a.handleList)
		s.AddTool(chatToolDef(), a.handleChat)

		return server.ServeStdio(s)
	},
}

func init() {
	agentCmd.Flags().StringVarP(&agentModel, "model", "m", "gpt-4o-mini", "Chat model name")
	rootCmd.AddCommand(agentCmd)
}

// agent bundles the shared backend state behind the MCP tools.
type agent struct {
	registry *registry.Registry
	sessions *session.Store
	model    rag.Model
	pipeline *rag.Pipeline
}

func newAgent() (*agent, error) {
	a := &agent{
		registry: registry.New(),
		sessions: session.NewStore(),
	}
	// Logs go to stderr so they don't interfere with the stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model, err := rag.NewOpenAIModel(rag.OpenAIConfig{APIKey: key, Model: agentModel})
		if err != nil {
			return nil, err
		}
		a.model = model
		a.pipeline, err = rag.New(rag.Config{
			Model:     model,
			Retriever: &rag.PlanRetriever{Registry: a.registry, MaxDocs: 20},
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("OPENAI_API_KEY not set; the chat tool is disabled")
	}
	return a, nil
}

func ingestToolDef() mcp.Tool {
	return mcp.NewTool("ingest_projects",
		mcp.WithDescription(
			"Plan ingestion for the project folders under a data root: resolve each "+
				"project's description and tag every file using the configured rules. "+
				"Plans stay in memory for list_projects and chat.",
		),
		mcp.WithString("data_path",
			mcp.Required(),
			mcp.Description("Root directory containing project folders"),
		),
		mcp.WithString("projects",
			mcp.Description("Comma-separated subset of project IDs to ingest"),
		),
	)
}

func (a *agent) handleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataPath := req.GetString("data_path", "")
	if dataPath == "" {
		return mcp.NewToolResultError("'data_path' is required"), nil
	}
	var selected []string
	if raw := req.GetString("projects", ""); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				selected = append(selected, name)
			}
		}
	}

	rules, err := ingest.LoadRules(rulesPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataRoot, err := filepath.Abs(dataPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// With a model available, missing descriptions are summarized from the
	// project's file listing instead of failing the batch.
	var provider ingest.DescriptionProvider
	if a.model != nil {
		provider = rag.NewDescriptionProvider(ctx, a.model)
	}
	plans, err := ingest.PlanAllProjects(dataRoot, rules, provider, selected)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(plans) == 0 {
		return mcp.NewToolResultError("no projects discovered under " + dataRoot), nil
	}
	a.registry.Update(plans)

	var b strings.Builder
	fmt.Fprintf(&b, "Ingested %d project(s):\n", len(plans))
	for _, plan := range plans {
		fmt.Fprintf(&b, "- %s (%d files): %s\n", plan.ProjectID, plan.FileCount(), plan.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func listToolDef() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List the ingested projects with their descriptions and per-file tags."),
	)
}

func (a *agent) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans := a.registry.List()
	if len(plans) == 0 {
		return mcp.NewToolResultText("No projects ingested yet. Run ingest_projects first."), nil
	}
	var b strings.Builder
	for _, plan := range plans {
		fmt.Fprintf(&b, "## %s\n%s\n", plan.ProjectID, plan.Description)
		for _, rec := range plan.Files {
			tags := strings.Join(rec.Tags.Sorted(), ", ")
			if tags == "" {
				tags = "-"
			}
			fmt.Fprintf(&b, "- %s [%s]\n", rec.RelativePath, tags)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func chatToolDef() mcp.Tool {
	return mcp.NewTool("chat",
		mcp.WithDescription(
			"Ask a question against an ingested project. Words prefixed with # "+
				"become tag filters restricting the retrieved context. The session "+
				"remembers its project lock across calls.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session identifier; reuse it to keep the project lock and history"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The chat message; may include #tag filters or a /clear command"),
		),
		mcp.WithString("project_id",
			mcp.Description("Lock the session to this project before answering"),
		),
	)
}

func (a *agent) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	message := strings.TrimSpace(req.GetString("message", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	if message == "" {
		return mcp.NewToolResultError("'message' is required"), nil
	}

	if command := session.IdentifyCommand(message); command != "" {
		reply, err := session.ApplyCommand(a.sessions, sessionID, command)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(reply), nil
	}

	cleaned, filters := session.ExtractFilters(message)
	if cleaned == "" {
		return mcp.NewToolResultError("message is empty after removing filters"), nil
	}

	projectID := req.GetString("project_id", "")
	if projectID == "" {
		projectID = a.sessions.ProjectLock(sessionID)
	}
	if projectID == "" {
		return mcp.NewToolResultError("session is not locked to a project; pass project_id"), nil
	}
	a.sessions.SetProject(sessionID, projectID)

	if a.pipeline == nil {
		return mcp.NewToolResultError("chat is disabled: OPENAI_API_KEY is not set"), nil
	}
	a.sessions.Append(sessionID, "user", cleaned, filters)
	answer, err := a.pipeline.Answer(ctx, projectID, cleaned, filters)
	if err != nil {
		return nil, fmt.Errorf("answering for %s: %w", projectID, err)
	}
	a.sessions.Append(sessionID, "assistant", answer, filters)
	return mcp.NewToolResultText(answer), nil
}
