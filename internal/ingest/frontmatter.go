package ingest

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter renders the fixed note metadata block, delimiters included and
// without a trailing newline. aliases is omitted when empty.
func Frontmatter(date string, topics, aliases []string) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	}

	add("created", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: date})
	add("created_at", quoted("[["+date+"]]"))

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range topics {
		seq.Content = append(seq.Content, quoted("[["+t+"]]"))
	}
	add("topics", seq)

	if len(aliases) > 0 {
		al := &yaml.Node{Kind: yaml.SequenceNode}
		for _, a := range aliases {
			al.Content = append(al.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a})
		}
		add("aliases", al)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("ingest: encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("ingest: encode frontmatter: %w", err)
	}
	return "---\n" + buf.String() + "---", nil
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: s}
}
