package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func decodeJSON(raw string, out interface{}) error {
	return json.Unmarshal([]byte(raw), out)
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
