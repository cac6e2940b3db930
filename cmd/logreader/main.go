// Command logreader inspects a table's transaction log and can serve the
// query-engine bridge over HTTP and gRPC.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tablelog/internal/auth"
	"tablelog/internal/bridge"
	"tablelog/internal/config"
	"tablelog/internal/logstore"
)

var (
	backendFlag string
	bucketFlag  string
	prefixFlag  string
	regionFlag  string
	versionFlag int64
)

var rootCmd = &cobra.Command{
	Use:   "logreader",
	Short: "Transaction-log reader CLI",
	Long:  `A command-line interface for inspecting a table's transaction log and serving its query-engine bridge.`,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <table-root>",
	Short: "Print a summary of the table's snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, root, err := buildStore(args[0])
		if err != nil {
			return err
		}
		svc := bridge.NewService(store, root)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		summary, err := svc.Snapshot(ctx, versionFlag)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}

		fmt.Println("📊 Snapshot:")
		fmt.Printf("  Version:       %d\n", summary.Version)
		fmt.Printf("  Active files:  %d\n", summary.NumFiles)
		fmt.Printf("  Size in bytes: %d\n", summary.SizeInBytes)
		if summary.SchemaJSON != "" {
			fmt.Printf("  Schema:        %s\n", summary.SchemaJSON)
		}
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files <table-root>",
	Short: "List the snapshot's active data files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, root, err := buildStore(args[0])
		if err != nil {
			return err
		}
		svc := bridge.NewService(store, root)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := svc.ListFiles(ctx, versionFlag)
		if err != nil {
			return fmt.Errorf("loading file list: %w", err)
		}

		fmt.Printf("📋 %d active files at version %d:\n", result.NumFiles, result.Version)
		for _, f := range result.Files {
			fmt.Printf("  %s (%d bytes) %v\n", f.Path, f.Size, f.PartitionValues)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve <table-root>",
	Short: "Serve the HTTP and gRPC query-engine bridge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("warning: could not load configuration: %v", err)
			cfg = &config.Config{}
		}

		store, root, err := buildStore(args[0])
		if err != nil {
			return err
		}
		svc := bridge.NewService(store, root)

		var authMW *auth.AuthMiddleware
		if cfg.Auth.Enabled {
			authMW = auth.NewAuthMiddleware(auth.NewJWTAuthenticator([]byte(cfg.Auth.JWTSecret), "tablelog"))
			tm := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), "tablelog", 24*time.Hour)
			devToken, err := tm.GenerateJWT("logreader-cli")
			if err != nil {
				return fmt.Errorf("minting dev token: %w", err)
			}
			fmt.Printf("🔑 dev bearer token: %s\n", devToken)
		}

		httpAddr := cfg.Bridge.HTTPAddr
		if httpAddr == "" {
			httpAddr = ":8090"
		}
		grpcAddr := cfg.Bridge.GRPCAddr
		if grpcAddr == "" {
			grpcAddr = ":8091"
		}

		httpSrv := bridge.NewHTTPServer(svc, authMW)
		grpcSrv := bridge.NewGRPCServer(svc, authMW).Register()

		listener, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", grpcAddr, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			log.Printf("📡 gRPC bridge listening on %s", grpcAddr)
			if err := grpcSrv.Serve(listener); err != nil {
				log.Printf("gRPC server stopped: %v", err)
			}
		}()

		go func() {
			log.Printf("🌐 HTTP bridge listening on %s", httpAddr)
			if err := httpSrv.Router().Run(httpAddr); err != nil {
				log.Printf("HTTP server stopped: %v", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 shutting down bridge...")
		grpcSrv.GracefulStop()
		cancel()
		log.Println("👋 bridge stopped")
		return nil
	},
}

func buildStore(tableRoot string) (logstore.Store, string, error) {
	switch backendFlag {
	case "", "local":
		store, err := logstore.NewLocalStore(tableRoot)
		if err != nil {
			return nil, "", fmt.Errorf("opening local table root %s: %w", tableRoot, err)
		}
		return store, "", nil
	case "s3":
		prefix := prefixFlag
		if prefix == "" {
			prefix = tableRoot
		}
		store, err := logstore.NewS3Store(context.Background(), bucketFlag, prefix, regionFlag)
		if err != nil {
			return nil, "", fmt.Errorf("opening s3 table root: %w", err)
		}
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q (want local or s3)", backendFlag)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "local", "log store backend: local or s3")
	rootCmd.PersistentFlags().StringVar(&bucketFlag, "bucket", "", "s3 bucket (backend=s3)")
	rootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "s3 key prefix (backend=s3)")
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "", "s3 region (backend=s3)")
	rootCmd.PersistentFlags().Int64Var(&versionFlag, "version", -1, "table version to read, -1 for latest")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
