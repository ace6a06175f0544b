package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/config"
	"github.com/zz6zz666/filerag/internal/db"
	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/gateway"
	"github.com/zz6zz666/filerag/internal/rerank"
	"github.com/zz6zz666/filerag/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the file RAG engine",
	Long: `Starts the engine: the HTTP gateway and the Discord adapter (when
enabled), plus the background reaper that reclaims expired file indexes.`,
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
			if reranker == nil {
				log.Printf("serve: no rerank provider available, using vector order")
			}
		}

		manager := session.New(cfg, database, resolver, reranker)
		defer manager.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		manager.SweepDisk(ctx)
		reaperDone := make(chan struct{})
		go func() {
			manager.RunReaper(ctx)
			close(reaperDone)
		}()

		var gw *gateway.Gateway
		if cfg.Gateway.Enabled {
			gw = gateway.New(cfg.Gateway, manager)
			go func() {
				if err := gw.Start(); err != nil && err != http.ErrServerClosed {
					log.Printf("serve: gateway: %v", err)
					cancel()
				}
			}()
		}

		var discord *chat.Discord
		if cfg.Discord.Enabled {
			token := os.Getenv(cfg.Discord.TokenEnv)
			if token == "" {
				return fmt.Errorf("discord enabled but %s is not set", cfg.Discord.TokenEnv)
			}
			discord, err = chat.NewDiscord(token, manager)
			if err != nil {
				return fmt.Errorf("creating discord adapter: %w", err)
			}
			if err := discord.Start(ctx); err != nil {
				return fmt.Errorf("starting discord adapter: %w", err)
			}
			log.Printf("serve: discord adapter connected")
		}

		if gw == nil && discord == nil {
			return fmt.Errorf("nothing to serve: enable the gateway or the discord adapter")
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Printf("serve: received %s, shutting down", sig)
		case <-ctx.Done():
		}
		cancel()
		<-reaperDone

		if discord != nil {
			if err := discord.Stop(); err != nil {
				log.Printf("serve: stopping discord adapter: %v", err)
			}
		}
		if gw != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := gw.Shutdown(shutdownCtx); err != nil {
				log.Printf("serve: gateway shutdown: %v", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
