package ticket

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://github.com/amonks/muontickets/ticket.schema.json"

//go:embed schema.json
var schemaJSON []byte

// SchemaJSON returns the JSON schema ticket frontmatter is validated against.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add ticket schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile ticket schema: %w", err)
	}
	return schema, nil
})

// checkSchema validates a frontmatter mapping against the embedded schema
// and returns one problem per violated leaf constraint.
func checkSchema(meta *yaml.Node) []string {
	schema, err := compiledSchema()
	if err != nil {
		return []string{err.Error()}
	}

	value, err := nodeValue(meta)
	if err != nil {
		return []string{err.Error()}
	}

	// Round-trip through JSON so the validator sees the same value types
	// encoding/json would produce.
	data, err := json.Marshal(value)
	if err != nil {
		return []string{fmt.Sprintf("marshal frontmatter for validation: %v", err)}
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return []string{fmt.Sprintf("unmarshal frontmatter for validation: %v", err)}
	}

	if err := schema.Validate(instance); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return []string{err.Error()}
		}
		var problems []string
		collectSchemaProblems(&problems, ve)
		sort.Strings(problems)
		return problems
	}
	return nil
}

func collectSchemaProblems(problems *[]string, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		field := jsonPointerToField(err.InstanceLocation)
		if field == "" {
			*problems = append(*problems, err.Message)
			return
		}
		*problems = append(*problems, fmt.Sprintf("field '%s': %s", field, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaProblems(problems, cause)
	}
}

func jsonPointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	var b strings.Builder
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// nodeValue converts a YAML node into plain Go values. Timestamps stay
// strings so they are checked as written.
func nodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeValue(node.Content[0])
	case yaml.AliasNode:
		return nodeValue(node.Alias)
	case yaml.MappingNode:
		values := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := nodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			values[node.Content[i].Value] = value
		}
		return values, nil
	case yaml.SequenceNode:
		values := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool", "!!int", "!!float":
			var value any
			if err := node.Decode(&value); err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return value, nil
		default:
			return node.Value, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}
