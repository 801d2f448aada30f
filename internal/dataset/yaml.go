package dataset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the YAML form of a dataset, keeping mapping order.
func ParseYAML(name string, data []byte) (*Dataset, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	ds := &Dataset{Name: name}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return ds, nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotObject
	}
	index := map[string]int{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		rec := Record{ID: root.Content[i].Value}
		if body := resolveAlias(root.Content[i+1]); body.Kind == yaml.MappingNode {
			rec.Inputs = yamlGroup(body, "inputs")
			rec.Outputs = yamlGroup(body, "outputs")
		}
		ds.addRecord(index, rec)
	}
	return ds, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func yamlGroup(rec *yaml.Node, field string) []Attr {
	var group *yaml.Node
	for i := 0; i+1 < len(rec.Content); i += 2 {
		if rec.Content[i].Value == field {
			group = resolveAlias(rec.Content[i+1])
		}
	}
	if group == nil || group.Kind != yaml.MappingNode {
		return nil
	}
	var out []Attr
	for i := 0; i+1 < len(group.Content); i += 2 {
		out = append(out, Attr{Name: group.Content[i].Value, Value: yamlScalar(group.Content[i+1])})
	}
	return out
}

func yamlScalar(n *yaml.Node) any {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode {
		b, err := yaml.Marshal(n)
		if err != nil {
			return nil
		}
		return strings.TrimSpace(string(b))
	}
	switch n.Tag {
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!null":
		return nil
	}
	return n.Value
}
