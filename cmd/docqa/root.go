package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "DocQA — document question answering service",
	Long:  `DocQA ingests PDF documents and answers questions about them over a REST API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
