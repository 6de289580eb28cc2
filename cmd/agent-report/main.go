package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
	"github.com/eyecrackcodes/agentsummary/internal/config"
	"github.com/eyecrackcodes/agentsummary/internal/dataprocessing"
)

func main() {
	inputPath := flag.String("input", "", "production workbook to analyze (.csv or .xlsx)")
	outputDir := flag.String("output", "reports", "output directory for generated reports")
	startWeek := flag.String("start", "", "first week label of the analysis range (inclusive)")
	endWeek := flag.String("end", "", "last week label of the analysis range (inclusive)")
	format := flag.String("format", "csv", "report format: csv or json")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *inputPath == "" {
		slog.Error("Missing required -input flag")
		flag.Usage()
		os.Exit(1)
	}
	if *format != "csv" && *format != "json" {
		slog.Error("Invalid report format", "format", *format, "hint", "use csv or json")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	loader := dataprocessing.NewLoader(logger)
	ctx := context.Background()

	slog.Info("Loading production workbook", "path", *inputPath)
	table, err := loader.LoadFile(ctx, *inputPath)
	if err != nil {
		slog.Error("Failed to load workbook", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded production table", "rows", len(table.Rows), "source", table.Source)

	analyzer, err := analytics.NewAnalyzer(cfg.Analytics.Pipeline(), logger)
	if err != nil {
		slog.Error("Failed to build analyzer", "error", err)
		os.Exit(1)
	}

	sel := analytics.WeekRange{Start: *startWeek, End: *endWeek}
	snapshot, err := analyzer.Analyze(ctx, table, sel)
	if err != nil {
		slog.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Analysis complete",
		"agents", len(snapshot.Agents),
		"weeks", len(snapshot.Weeks))
	if !snapshot.Defects.Empty() {
		slog.Warn("Data defects encountered",
			"unparseable_cells", snapshot.Defects.UnparseableCells,
			"blank_agent_rows", snapshot.Defects.BlankAgentRows,
			"duplicate_totals", snapshot.Defects.DuplicateTotals)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("Failed to create output directory", "path", *outputDir, "error", err)
		os.Exit(1)
	}

	if *format == "json" {
		outPath := filepath.Join(*outputDir, "agent_snapshot.json")
		if err := writeJSON(outPath, snapshot); err != nil {
			slog.Error("Failed to write snapshot", "path", outPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Report generated", "snapshot", outPath)
		printHeadline(snapshot)
		return
	}

	summaryPath := filepath.Join(*outputDir, "agent_summary.csv")
	if err := writeAgentSummary(summaryPath, snapshot.Agents); err != nil {
		slog.Error("Failed to write agent summary", "path", summaryPath, "error", err)
		os.Exit(1)
	}

	riskPath := filepath.Join(*outputDir, "risk_assessments.csv")
	if err := writeRiskAssessments(riskPath, snapshot.Assessments); err != nil {
		slog.Error("Failed to write risk assessments", "path", riskPath, "error", err)
		os.Exit(1)
	}

	portfolioPath := filepath.Join(*outputDir, "portfolio_summary.json")
	if err := writeJSON(portfolioPath, snapshot.Summary); err != nil {
		slog.Error("Failed to write portfolio summary", "path", portfolioPath, "error", err)
		os.Exit(1)
	}

	slog.Info("Reports generated",
		"summary", summaryPath,
		"risk", riskPath,
		"portfolio", portfolioPath)
	printHeadline(snapshot)
}

func writeAgentSummary(path string, agents []analytics.AgentPeriodRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Agent", "First Quotes", "Second Quotes", "Submitted", "Free Look",
		"Conversion Rate", "Quote Progression Rate", "Overall Conversion Rate",
		"Free Look Rate", "Quality Score", "Weeks Active", "Avg Weekly Submissions",
		"Quality Tier", "Risk Profile",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, a := range agents {
		record := []string{
			a.Agent,
			formatFloat(a.FirstQuotes),
			formatFloat(a.SecondQuotes),
			formatFloat(a.Submitted),
			formatFloat(a.FreeLook),
			formatFloat(a.ConversionRate),
			formatFloat(a.QuoteProgressionRate),
			formatFloat(a.OverallConversionRate),
			formatFloat(a.FreeLookRate),
			formatFloat(a.QualityScore),
			strconv.Itoa(a.WeeksActive),
			formatFloat(a.AvgWeeklySubmissions),
			a.QualityTier,
			a.RiskProfile,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record for %s: %w", a.Agent, err)
		}
	}
	return nil
}

func writeRiskAssessments(path string, assessments []analytics.RiskAssessment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Agent", "Score", "Level", "Issues"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range assessments {
		record := []string{
			a.Agent,
			strconv.Itoa(a.Score),
			a.Level,
			strings.Join(a.Issues, "; "),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record for %s: %w", a.Agent, err)
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func printHeadline(snapshot *analytics.Snapshot) {
	s := snapshot.Summary
	fmt.Println("\n=== PORTFOLIO SUMMARY ===")
	fmt.Printf("Qualified agents: %d\n", s.AgentCount)
	fmt.Printf("Total submissions: %.0f\n", s.TotalSubmitted)
	fmt.Printf("Avg conversion rate: %.1f%%\n", s.AvgConversionRate)
	fmt.Printf("Avg quality score: %.1f\n", s.AvgQualityScore)

	if len(s.TopPerformers) > 0 {
		fmt.Println("\n=== TOP PERFORMERS ===")
		fmt.Println("Agent                | Conversion | Quality | Tier")
		fmt.Println("---------------------|------------|---------|----------")
		for _, a := range s.TopPerformers {
			fmt.Printf("%-20s | %9.1f%% | %7.1f | %s\n",
				a.Agent, a.ConversionRate, a.QualityScore, a.QualityTier)
		}
	}

	if len(s.CoachingPriorities) > 0 {
		fmt.Println("\n=== COACHING PRIORITIES ===")
		for _, a := range s.CoachingPriorities {
			fmt.Printf("%-20s | score %d (%s)\n", a.Agent, a.Score, a.Level)
			for _, issue := range a.Issues {
				fmt.Printf("  - %s\n", issue)
			}
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
