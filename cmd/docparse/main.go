// Command docparse processes a directory of business documents into
// structured records: text extraction (PDF text layer, OCR, spreadsheets),
// field extraction, SQLite persistence and an optional XLSX report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/async"
	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/export"
	"github.com/rubilakse/docparse/internal/extract"
	"github.com/rubilakse/docparse/internal/llm"
	"github.com/rubilakse/docparse/internal/parse"
	"github.com/rubilakse/docparse/internal/pipeline"
	"github.com/rubilakse/docparse/internal/repository"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory with documents to process (required)")
		out     = flag.String("out", "", "output XLSX report path (optional, defaults next to -dir)")
		dbPath  = flag.String("db", "", "SQLite database path (overrides DB_PATH)")
		jsonOut = flag.String("json", "", "write all parsed documents as a JSON array to this path")
		noLLM   = flag.Bool("no-llm", false, "skip the analysis service, deterministic extraction only")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: -dir is required\n")
		flag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "documents.xlsx")
	}

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *noLLM {
		cfg.LLM.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := repository.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	extractor := extract.NewExtractor(extract.Config{
		Pdftoppm:      cfg.OCR.PdftoppmPath,
		DPI:           cfg.OCR.RasterDPI,
		UpscaleFactor: cfg.OCR.UpscaleFactor,
		BinarizeLevel: cfg.OCR.BinarizeLevel,
		Languages:     cfg.OCR.Languages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, nil, logger)

	parser, err := parse.NewParser(parse.Config{
		BuyerPattern:  cfg.Parser.BuyerPattern,
		LongNameLimit: cfg.Parser.LongNameLimit,
		MaxLineRows:   cfg.Parser.MaxLineRows,
	}, logger)
	if err != nil {
		logger.Error("failed to build parser", "error", err)
		os.Exit(1)
	}

	var client *llm.Client
	if cfg.LLM.Enabled {
		client = llm.NewClient(llm.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxChars:    cfg.LLM.MaxChars,
		}, logger)
		logger.Info("analysis client initialized", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)
	} else {
		logger.Info("analysis disabled, deterministic extraction only")
	}

	var fields llm.FieldExtractor
	var pinger llm.Pinger
	if client != nil {
		fields = client
		pinger = client
	}

	processor := pipeline.NewProcessor(extractor, parser, fields, pinger,
		pipeline.Config{AnalysisEnabled: cfg.LLM.Enabled}, logger)

	files, skipped, err := loadDirectory(*dir)
	if err != nil {
		logger.Error("failed to read input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		printError("No supported documents found in %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(files), "skipped", skipped)

	var mu sync.Mutex
	var docs []entity.ParsedDocument
	sink := func(ctx context.Context, doc *entity.ParsedDocument) error {
		if err := repo.Save(ctx, doc); err != nil {
			return err
		}
		mu.Lock()
		docs = append(docs, *doc)
		mu.Unlock()
		return nil
	}

	queue := async.NewQueue(processor, sink, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(len(files)),
		async.WithProcessTimeout(cfg.Batch.FileTimeout),
	)
	for _, f := range files {
		_ = queue.Enqueue(ctx, async.Job{File: f, SubmittedAt: time.Now()})
	}
	queue.Shutdown(ctx)

	_, failedJobs := queue.Stats()
	failures := int(failedJobs)
	// workers finish out of order, keep the report deterministic
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Source.Filename < docs[j].Source.Filename
	})

	if *jsonOut != "" && len(docs) > 0 {
		enc, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			logger.Error("failed to encode documents", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*jsonOut, enc, 0644); err != nil {
			logger.Error("failed to write json dump", "path", *jsonOut, "error", err)
			os.Exit(1)
		}
		logger.Info("json dump written", "path", *jsonOut, "documents", len(docs))
	}

	if len(docs) > 0 {
		xlsx, err := export.NewService(logger).DocumentsXLSX(docs)
		if err != nil {
			logger.Error("failed to build report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0644); err != nil {
			logger.Error("failed to write report", "path", *out, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"processed", len(docs),
		"failures", failures,
		"skipped", skipped,
		"output", *out)

	fmt.Printf("Processed %d of %d documents (%d skipped, %d failed)\n",
		len(docs), len(files), skipped, failures)
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if len(docs) > 0 {
		fmt.Printf("Report:   %s\n", *out)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

// loadDirectory reads every supported file in dir, non-recursive. Returns
// the loaded files and how many entries were skipped as unsupported.
func loadDirectory(dir string) ([]extract.File, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	var files []extract.File
	skipped := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			skipped++
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		files = append(files, extract.File{
			Name:     e.Name(),
			MIMEType: mime.TypeByExtension("." + ext),
			Data:     data,
		})
	}
	return files, skipped, nil
}
