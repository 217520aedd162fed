package predict

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ParseSchema decodes an ordered feature-column list. Input is either a JSON
// array of strings or newline-separated names; blank lines and lines starting
// with # are ignored in the text form.
func ParseSchema(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	var cols []string
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &cols); err != nil {
			return nil, fmt.Errorf("decoding schema: %w", err)
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(trimmed))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cols = append(cols, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading schema: %w", err)
		}
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("schema is empty")
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c == "" {
			return nil, fmt.Errorf("schema has an empty column name")
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("schema lists %q twice", c)
		}
		seen[c] = struct{}{}
	}
	return cols, nil
}

// LoadSchema reads a schema file from path.
func LoadSchema(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	cols, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cols, nil
}
