package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"qcloud/internal/app"
	"qcloud/internal/domain"
	"qcloud/internal/infra/taskstore"
)

func writeJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type complexJSON struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func toComplexJSON(c complex128) complexJSON {
	return complexJSON{Re: real(c), Im: imag(c)}
}

// resultJSON renders r with complex numbers split into re/im pairs.
func resultJSON(r domain.Result) map[string]any {
	out := map[string]any{"kind": r.Kind().String()}
	switch v := r.Value().(type) {
	case map[string]complex128:
		amps := make(map[string]complexJSON, len(v))
		for key, c := range v {
			amps[key] = toComplexJSON(c)
		}
		out["value"] = amps
	case complex128:
		out["value"] = toComplexJSON(v)
	case [][]complex128:
		rows := make([][]complexJSON, 0, len(v))
		for _, row := range v {
			cells := make([]complexJSON, 0, len(row))
			for _, c := range row {
				cells = append(cells, toComplexJSON(c))
			}
			rows = append(rows, cells)
		}
		out["value"] = rows
	default:
		out["value"] = v
	}
	return out
}

func batchJSON(b domain.BatchResult) []map[string]any {
	steps := make([]map[string]any, 0, b.Len())
	for _, step := range b.Steps {
		entry := resultJSON(step.Result)
		entry["step"] = step.Step
		steps = append(steps, entry)
	}
	return steps
}

func formatComplex(c complex128) string {
	return strconv.FormatComplex(c, 'g', -1, 128)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func printResult(w io.Writer, r domain.Result, indent string) {
	switch v := r.Value().(type) {
	case map[string]float64:
		for _, key := range sortedKeys(v) {
			fmt.Fprintf(w, "%s%s\t%g\n", indent, key, v[key])
		}
	case map[string]complex128:
		for _, key := range sortedKeys(v) {
			fmt.Fprintf(w, "%s%s\t%s\n", indent, key, formatComplex(v[key]))
		}
	case complex128:
		fmt.Fprintf(w, "%s%s\n", indent, formatComplex(v))
	case float64:
		fmt.Fprintf(w, "%s%s=%g\n", indent, r.Kind(), v)
	case [][]complex128:
		for _, row := range v {
			fmt.Fprint(w, indent)
			for i, c := range row {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprint(w, formatComplex(c))
			}
			fmt.Fprintln(w)
		}
	default:
		fmt.Fprintf(w, "%s(no result)\n", indent)
	}
}

func printBatch(w io.Writer, b domain.BatchResult) {
	for _, step := range b.Steps {
		fmt.Fprintf(w, "step %d:\n", step.Step)
		printResult(w, step.Result, "  ")
	}
}

func writeResult(w io.Writer, r domain.Result, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, resultJSON(r))
	}
	printResult(w, r, "")
	return nil
}

func writeBatch(w io.Writer, b domain.BatchResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, map[string]any{"steps": batchJSON(b)})
	}
	printBatch(w, b)
	return nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func writeReport(w io.Writer, report app.Report, jsonOutput bool) error {
	if jsonOutput {
		payload := map[string]any{
			"id":     report.ID,
			"status": report.Status().String(),
		}
		if msg := errorText(report.Err()); msg != "" {
			payload["error"] = msg
		}
		switch {
		case report.Task != nil && !report.Task.Result.IsZero():
			payload["result"] = resultJSON(report.Task.Result)
		case report.Batch != nil && report.Batch.Result.Len() > 0:
			payload["steps"] = batchJSON(report.Batch.Result)
		}
		return writeJSON(w, payload)
	}

	if report.ID != "" {
		fmt.Fprintf(w, "id=%s status=%s\n", report.ID, report.Status())
	} else {
		fmt.Fprintf(w, "status=%s\n", report.Status())
	}
	if msg := errorText(report.Err()); msg != "" {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
	switch {
	case report.Task != nil && !report.Task.Result.IsZero():
		printResult(w, report.Task.Result, "")
	case report.Batch != nil:
		printBatch(w, report.Batch.Result)
	}
	return nil
}

// reportExit maps a failed report to a non-zero exit status after it has
// been printed.
func reportExit(report app.Report) error {
	if report.Status() == domain.TaskStatusFailed {
		return exitSilent(2)
	}
	return nil
}

type entryJSON struct {
	ID          string    `json:"id"`
	Batch       bool      `json:"batch"`
	Backend     string    `json:"backend"`
	Steps       int       `json:"steps,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toEntryJSON(e taskstore.Entry) entryJSON {
	out := entryJSON{
		ID:        e.ID,
		Batch:     e.IsBatch(),
		Backend:   e.Backend().String(),
		Status:    e.Status.String(),
		Error:     e.Error,
		UpdatedAt: e.UpdatedAt,
	}
	switch {
	case e.Batch != nil:
		out.Steps = len(e.Batch.Steps)
		out.SubmittedAt = e.Batch.SubmittedAt
	case e.Task != nil:
		out.SubmittedAt = e.Task.SubmittedAt
	}
	return out
}

func writeEntries(w io.Writer, entries []taskstore.Entry, jsonOutput bool) error {
	if jsonOutput {
		out := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryJSON(e))
		}
		return writeJSON(w, out)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no stored tasks")
		return nil
	}
	for _, e := range entries {
		view := toEntryJSON(e)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", view.ID, view.Backend, view.Status, view.SubmittedAt.Local().Format(time.RFC3339))
	}
	return nil
}
