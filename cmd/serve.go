package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/rag"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/registry"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveDataPath string
	serveModel    string
	serveBaseURL  string
	serveRPM      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API with /v1/ingest, /v1/session/lock and /v1/chat.

Chat answers need a model. Set OPENAI_API_KEY (plus --model, and --base-url
for OpenAI-compatible providers); without a key the server still ingests
and previews, and chat returns 501.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))

		reg := registry.New()
		var pipeline *rag.Pipeline
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			model, err := rag.NewOpenAIModel(rag.OpenAIConfig{
				APIKey:            key,
				Model:             serveModel,
				BaseURL:           serveBaseURL,
				RequestsPerMinute: serveRPM,
			})
			if err != nil {
				return err
			}
			pipeline, err = rag.New(rag.Config{
				Model:     model,
				Retriever: &rag.PlanRetriever{Registry: reg, MaxDocs: 20},
			})
			if err != nil {
				return err
			}
			log.Info("retrieval pipeline configured", "model", serveModel)
		} else {
			log.Warn("OPENAI_API_KEY not set; chat answers disabled")
		}

		s := server.New(server.Config{
			RulesPath:       rulesPath,
			DefaultDataPath: serveDataPath,
			Registry:        reg,
			Pipeline:        pipeline,
			Logger:          log,
		})

		httpServer := &http.Server{
			Addr:              serveAddr,
			Handler:           s,
			ReadHeaderTimeout: 10 * time.Second,
		}
		fmt.Printf("Listening on %s...\n", serveAddr)
		return httpServer.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8000", "Listen address")
	serveCmd.Flags().StringVarP(&serveDataPath, "data", "d", "data", "Default data root for ingestion requests")
	serveCmd.Flags().StringVarP(&serveModel, "model", "m", "gpt-4o-mini", "Chat model name")
	serveCmd.Flags().StringVar(&serveBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	serveCmd.Flags().IntVar(&serveRPM, "rpm", 0, "Model request rate limit per minute (0 = unlimited)")
	rootCmd.AddCommand(serveCmd)
}
