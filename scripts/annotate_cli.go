// Dev tool: run the annotation engine against a text file from the
// command line and print the anchored suggestions.
//
// Usage:
//
//	go run scripts/annotate_cli.go document.txt [limit]
//
// Uses the configured default model; set DEFAULT_MODEL=lorem-test to run
// without an API key.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/annotate"
	llmsvc "github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: annotate_cli <file> [limit]")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	limit := 0
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid limit %q\n", os.Args[2])
			os.Exit(1)
		}
		limit = n
	}

	content, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sread file: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	registry, err := llmsvc.SetupProviders(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	catalog := annotate.DefaultCatalog()
	engine := annotate.NewEngine(registry, catalog, cfg.DefaultModel, logger)

	categories := make([]models.Category, 0, len(catalog.List()))
	for _, info := range catalog.List() {
		categories = append(categories, info.ID)
	}
	fmt.Printf("%smodel%s %s  %scategories%s %v\n\n", colorCyan, colorReset, cfg.DefaultModel, colorCyan, colorReset, categories)

	suggestions, err := engine.Analyze(context.Background(), string(content), categories, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sanalysis failed: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	if len(suggestions) == 0 {
		fmt.Println("no suggestions")
		return
	}

	for _, s := range suggestions {
		fmt.Printf("%s#%d%s [%d-%d] %s%s%s\n", colorYellow, s.ID, colorReset, s.Start, s.End, colorCyan, s.Category, colorReset)
		fmt.Printf("  %s- %s%s\n", colorRed, s.Original, colorReset)
		fmt.Printf("  %s+ %s%s\n", colorGreen, s.Replacement, colorReset)
		fmt.Printf("  %s\n\n", s.Reason)
	}
}
