package main

import (
	"encoding/json"
	"io"
)

// outputJSON writes data as indented JSON.
func outputJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
