package state

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Marshal serializes the document as a YAML metadata block delimited by ---
// lines, followed by the free-form request text.
func Marshal(d *Document) ([]byte, error) {
	d.normalize()

	meta, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata block: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	buf.Write(meta)
	buf.WriteString(delimiter + "\n")
	if d.Request != "" {
		buf.WriteString("\n")
		buf.WriteString(d.Request)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a state document. The content must start with a ---
// delimited YAML metadata block; everything after the closing delimiter is
// the request text.
func Unmarshal(data []byte) (*Document, error) {
	content := string(data)
	if !strings.HasPrefix(content, delimiter) {
		return nil, fmt.Errorf("missing metadata block (document must start with %s)", delimiter)
	}

	rest := strings.TrimPrefix(content, delimiter)
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return nil, fmt.Errorf("invalid metadata block (missing closing %s)", delimiter)
	}
	meta := rest[:end+1]
	body := rest[end+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	var doc Document
	if err := yaml.Unmarshal([]byte(meta), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata block: %w", err)
	}
	doc.Request = body
	doc.normalize()
	return &doc, nil
}
