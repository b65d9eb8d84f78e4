package main

import (
	"encoding/json"
	"io"
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
