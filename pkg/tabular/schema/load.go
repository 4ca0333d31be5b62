package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openrow/tabular/pkg/tabular/internalerr"
)

// yamlNode is the on-disk shape of a form definition element.
type yamlNode struct {
	Name     string            `yaml:"name"`
	Title    string            `yaml:"title,omitempty"`
	Type     string            `yaml:"type"`
	Bind     map[string]string `yaml:"bind,omitempty"`
	Children []yamlNode        `yaml:"children,omitempty"`
}

// Load reads a YAML form definition from a file.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form definition: %w", err)
	}
	return Parse(data)
}

// Parse builds the immutable schema tree from a YAML form definition.
// Child paths do not include the survey root's name, matching the
// abbreviated-xpath convention used in stored submissions.
func Parse(data []byte) (*Node, error) {
	var root yamlNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse form definition: %w", err)
	}
	if root.Name == "" {
		return nil, fmt.Errorf("form definition has no name: %w", internalerr.ErrInvalidConfig)
	}
	node := &Node{
		Name: root.Name,
		Path: root.Name,
		Kind: KindGroup,
		Type: "survey",
	}
	for _, child := range root.Children {
		built, err := buildNode(child, "")
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, built)
	}
	return node, nil
}

func buildNode(yn yamlNode, prefix string) (*Node, error) {
	if yn.Name == "" {
		return nil, fmt.Errorf("form element under %q has no name: %w", prefix, internalerr.ErrInvalidConfig)
	}
	path := yn.Name
	if prefix != "" {
		path = prefix + "/" + yn.Name
	}
	n := &Node{
		Name:     yn.Name,
		Path:     path,
		Type:     yn.Type,
		BindType: yn.Bind["type"],
	}
	switch yn.Type {
	case "group":
		n.Kind = KindGroup
	case "repeat":
		n.Kind = KindRepeat
	case "select all that apply", "select_multiple":
		n.Kind = KindSelectMultiple
	case GeopointBindType:
		n.Kind = KindQuestion
		n.BindType = GeopointBindType
	default:
		n.Kind = KindQuestion
	}
	for _, child := range yn.Children {
		built, err := buildNode(child, path)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, built)
	}
	return n, nil
}
