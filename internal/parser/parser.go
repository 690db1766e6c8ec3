// Package parser splits exported Markdown files into front-matter attributes
// and body text.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document holds the output of parsing one exported Markdown file.
type Document struct {
	Attributes map[string]interface{}
	Body       string
}

// Parse separates the YAML front-matter block (between leading ---
// delimiters) from the Markdown body. A file without front-matter yields nil
// attributes and the whole input as body. Invalid YAML is an error: the
// attributes carry authorship and publication metadata the import depends
// on, so a file that cannot be decoded must be reported, not silently
// imported without them.
func Parse(data []byte) (*Document, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return &Document{Body: string(data)}, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, fmt.Errorf("parser: front-matter block is not closed")
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var attrs map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &attrs); err != nil {
		return nil, fmt.Errorf("parser: decode front-matter: %w", err)
	}

	return &Document{Attributes: attrs, Body: body}, nil
}
