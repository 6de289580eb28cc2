// Package analytics implements the agent production analytics pipeline:
// weekly final-expense production rows in, qualified per-agent performance
// records, risk assessments, and a portfolio summary out.
//
// # Pipeline
//
// One Analyze pass runs these stages in order:
//
//  1. Normalization: raw table cells are coerced to typed numeric fields;
//     unparseable cells read as 0 and are counted, never fatal.
//  2. Period splitting: per-week rows are separated from the reserved
//     period-total rows and each agent's distinct active weeks are counted.
//  3. Qualification: totals rows pass minimum quote, submission, and
//     active-week thresholds; everyone else is excluded outright.
//  4. Metrics: conversion, progression, free-look, and quality rates are
//     derived per record, with zero denominators reading as 0.
//  5. Classification: preferred and GI percentages map onto explicit ordinal
//     scales; out-of-range values label as Unclassified.
//  6. Risk scoring: a fixed rule set accumulates a score, a severity level,
//     and human-readable issues per agent.
//  7. Summary: cross-agent totals, averages, distributions, top performers,
//     and coaching priorities.
//
// When a week sub-range is selected, stage 3 instead rebuilds totals from
// the weekly rows in range (counts summed, percentages submission-weighted)
// and re-qualifies against a proportionally scaled submission threshold.
//
// # Layout
//
//   - types.go: records, snapshot, configuration
//   - scale.go: explicit ordinal binning
//   - normalize.go: table coercion
//   - split.go: week/total partitioning
//   - qualify.go: threshold gates
//   - metrics.go: derived rates
//   - risk.go: rule set and severity
//   - rangeagg.go: sub-range re-aggregation
//   - summary.go: portfolio aggregates
//   - analyzer.go: orchestration
//
// # Usage
//
//	analyzer, err := analytics.NewAnalyzer(analytics.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := analyzer.Analyze(ctx, table, analytics.WeekRange{})
//	if err != nil {
//	    return err
//	}
//	for _, agent := range snapshot.Agents {
//	    fmt.Println(agent.Agent, agent.QualityTier, agent.RiskProfile)
//	}
package analytics
