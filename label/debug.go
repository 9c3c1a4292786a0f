package label

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON dumps built instructions as JSON for inspection.
func WriteDebugJSON(instrs []Instruction, path string) error {
	if instrs == nil {
		return nil
	}
	data, err := json.MarshalIndent(instrs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
