package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"pets-gateway/internal/domain/pets"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case formatText, "":
		return formatText, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q: want text, json or yaml", s)
	}
}

// writeRows respeta el orden de columnas de la proyección en text; json y
// yaml escriben cada fila como objeto.
func writeRows(w io.Writer, format string, cols []string, rows []pets.Row) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case formatJSON, formatYAML:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any(r))
		}
		return writeValue(w, format, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, r := range rows {
		vals := make([]string, 0, len(cols))
		for _, c := range cols {
			vals = append(vals, cell(c, r[c]))
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}

func writeValue(w io.Writer, format string, v any) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	m, ok := v.(map[string]any)
	if !ok {
		_, err := fmt.Fprintln(w, v)
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %v\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func cell(col string, v any) string {
	if v == nil {
		return "NULL"
	}
	if col == pets.ColumnGender {
		if n, ok := pets.AsInt(v); ok {
			return pets.Gender(n).String()
		}
	}
	return fmt.Sprint(v)
}
