// report.go - Benchmark summary tables
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// renderReport prints the timing and size tables for one scheme run.
func renderReport(scheme string, mc *MetricsCollector) {
	fmt.Printf("\n=== %s ===\n", scheme)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Operation", "Count", "Total", "Mean", "Median")
	for _, s := range mc.Summaries() {
		table.Append([]string{
			s.Op,
			fmt.Sprintf("%d", s.Count),
			s.Total.String(),
			s.Mean.String(),
			s.Median.String(),
		})
	}
	table.Render()

	sizes := mc.Sizes()
	if len(sizes) == 0 {
		return
	}
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	sizeTable := tablewriter.NewWriter(os.Stdout)
	sizeTable.Header("Artifact", "Bytes")
	for _, name := range names {
		sizeTable.Append([]string{name, fmt.Sprintf("%d", sizes[name])})
	}
	sizeTable.Render()
}
