package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/TheOgre365/equip-track/internal/domain"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(stdout, "no results")
		return
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func assetRow(a domain.Asset) []string {
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		a.Name,
		a.Type,
		string(a.Status),
		orDash(a.AssignedTo),
		orDash(a.SerialNumber),
	}
}

var assetHeaders = []string{"ID", "NAME", "TYPE", "STATUS", "ASSIGNED_TO", "SERIAL"}

// printAssetGroups prints one table per type group, in group order.
func printAssetGroups(groups []domain.AssetGroup) {
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(stdout, "no results")
		return
	}
	for i, g := range groups {
		if i > 0 {
			_, _ = fmt.Fprintln(stdout)
		}
		_, _ = fmt.Fprintf(stdout, "%s (%d)\n", g.Type, g.Count())
		rows := make([][]string, 0, len(g.Assets))
		for _, a := range g.Assets {
			rows = append(rows, assetRow(a))
		}
		printTable(assetHeaders, rows)
	}
}

func printAsset(a domain.Asset) {
	printKV([][2]string{
		{"id", strconv.FormatUint(uint64(a.ID), 10)},
		{"name", a.Name},
		{"type", a.Type},
		{"status", string(a.Status)},
		{"assigned_to", orDash(a.AssignedTo)},
		{"serial_number", orDash(a.SerialNumber)},
		{"updated_at", formatTime(a.UpdatedAt)},
	})
}

func printHistory(events []domain.HistoryEvent) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{formatTime(e.CreatedAt), e.Action, e.Details})
	}
	printTable([]string{"WHEN", "ACTION", "DETAILS"}, rows)
}

func printEmployee(e domain.Employee) {
	printKV([][2]string{
		{"id", strconv.FormatUint(uint64(e.ID), 10)},
		{"full_name", e.FullName},
		{"role", orDash(e.Role)},
		{"department", orDash(e.Department)},
	})
}

func printDirectory(entries []domain.DirectoryEntry) {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		names := make([]string, 0, len(entry.Assets))
		for _, a := range entry.Assets {
			names = append(names, a.Name)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(entry.Employee.ID), 10),
			entry.Employee.FullName,
			orDash(entry.Employee.Role),
			orDash(entry.Employee.Department),
			orDash(strings.Join(names, ", ")),
		})
	}
	printTable([]string{"ID", "NAME", "ROLE", "DEPARTMENT", "DEVICES"}, rows)
}

func printSummary(s domain.Summary) {
	printKV([][2]string{
		{"main assets", strconv.Itoa(s.Total)},
		{"available", strconv.Itoa(s.Available)},
		{"deployed", strconv.Itoa(s.InUse)},
		{"maintenance", strconv.Itoa(s.Maintenance)},
	})
}
