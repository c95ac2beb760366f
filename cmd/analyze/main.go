// Owner: tom@tradecrew.au
//
// Offline triage: parse an mbox export, run every message through the
// analyzer against a local database and print the results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/TradecrewAI/tradecrew/pkg/db"
	"github.com/TradecrewAI/tradecrew/pkg/logging"
	"github.com/TradecrewAI/tradecrew/pkg/mailroom"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

type options struct {
	Mbox     string `short:"f" long:"mbox" description:"Path to the mbox file to analyze" required:"true"`
	UserID   string `short:"u" long:"user" description:"User id to attribute the emails to" default:"local"`
	DBPath   string `long:"db" description:"SQLite database path (temporary file when empty)"`
	JSON     bool   `long:"json" description:"Print results as JSON instead of text"`
	LogLevel string `long:"log-level" description:"Log level" default:"warn"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	logger := logging.New(opts.LogLevel)

	dbPath := opts.DBPath
	if dbPath == "" {
		dir, err := os.MkdirTemp("", "tradecrew-analyze-*")
		if err != nil {
			logger.Fatal("Unable to create temp dir", "error", err)
		}
		defer os.RemoveAll(dir) //nolint:errcheck
		dbPath = filepath.Join(dir, "analyze.db")
	}

	store, err := db.NewStore(dbPath)
	if err != nil {
		logger.Fatal("Unable to open database", "path", dbPath, "error", err)
	}
	defer store.Close() //nolint:errcheck

	processor, err := mailroom.NewProcessor(logger)
	if err != nil {
		logger.Fatal("Unable to create processor", "error", err)
	}

	ctx := context.Background()
	emails, err := processor.ProcessMbox(ctx, opts.Mbox, opts.UserID)
	if err != nil {
		logger.Fatal("Unable to process mbox", "path", opts.Mbox, "error", err)
	}

	triageService := triage.NewService(logger, store, store, nil)
	analyses := triageService.AnalyzeEmails(ctx, emails)
	summary := triage.SummarizeBatch(analyses)

	if opts.JSON {
		out := struct {
			Analyses []*triage.EmailAnalysis `json:"analyses"`
			Summary  triage.BatchSummary     `json:"summary"`
		}{analyses, summary}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			logger.Fatal("Unable to encode output", "error", err)
		}
		return
	}

	for _, a := range analyses {
		fmt.Printf("[%s/%s] %s\n", a.Category, a.Priority, a.EmailID)
		fmt.Printf("  urgency=%d relevance=%d actionRequired=%t\n",
			a.UrgencyScore, a.BusinessRelevance, a.ActionRequired)
		if len(a.Keywords) > 0 {
			fmt.Printf("  keywords: %v\n", a.Keywords)
		}
		for _, action := range a.SuggestedActions {
			fmt.Printf("  -> %s\n", action)
		}
	}
	fmt.Printf("\n%d analyzed: %d urgent, %d high priority, %d need action\n",
		summary.Total, summary.UrgentCount, summary.HighPriorityCount, summary.ActionRequiredCount)
}
