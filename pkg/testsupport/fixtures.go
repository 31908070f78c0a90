package testsupport

import (
	"encoding/json"
	"os"
)

// LoadFixture reads a raw fixture file.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes a JSON fixture into v.
func LoadGolden(path string, v any) error {
	data, err := LoadFixture(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
