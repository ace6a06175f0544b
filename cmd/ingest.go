package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/config"
	"github.com/zz6zz666/filerag/internal/db"
	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/rerank"
	"github.com/zz6zz666/filerag/internal/session"
)

var (
	ingestSession string
	ingestQuery   string
)

// localAttachment feeds a file already on disk through the ingestion
// pipeline. The pipeline deletes its staged copy after indexing, so the
// original is staged into a temp directory first.
type localAttachment struct{ path string }

func (a localAttachment) Name() string { return filepath.Base(a.path) }

func (a localAttachment) GetFile(context.Context) (string, error) {
	src, err := os.Open(a.path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir, err := os.MkdirTemp("", "filerag-ingest-*")
	if err != nil {
		return "", err
	}
	staged := filepath.Join(dir, filepath.Base(a.path))
	dst, err := os.Create(staged)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return staged, nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest local files into a session (debugging aid)",
	Long: `Runs the full ingestion pipeline against local files without a chat
surface attached, then optionally runs a retrieval query and prints the
context block that would be injected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "filerag.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		resolver := embeddings.NewResolver(cfg.EmbeddingProviders, cfg.EmbeddingProviderID)
		var reranker rerank.Reranker
		if cfg.EnableRerank {
			reranker = rerank.Resolve(cfg.RerankProviders, cfg.RerankProviderID)
		}

		manager := session.New(cfg, database, resolver, reranker)
		defer manager.Close()

		ctx := cmd.Context()
		bar := progressbar.Default(int64(len(args)), "ingesting")
		for _, path := range args {
			ev := &chat.Event{
				SessionID:   ingestSession,
				Type:        chat.DirectMessage,
				Attachments: []chat.Attachment{localAttachment{path: path}},
				Reply: func(_ context.Context, text string) error {
					fmt.Println(text)
					return nil
				},
			}
			manager.HandleFiles(ctx, ev)
			bar.Add(1)
		}

		if ingestQuery != "" {
			req := &chat.Request{SessionID: ingestSession, Prompt: ingestQuery}
			manager.OnRequest(ctx, req)
			fmt.Println("--- mutated prompt ---")
			fmt.Println(req.Prompt)
			for _, msg := range req.Contexts {
				fmt.Printf("--- injected %s message ---\n%s\n", msg.Role, msg.Content)
			}
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSession, "session", "cli:DirectMessage:local", "session id to ingest into")
	ingestCmd.Flags().StringVar(&ingestQuery, "query", "", "optional retrieval query to run after ingesting")
	rootCmd.AddCommand(ingestCmd)
}
