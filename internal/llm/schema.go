package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// SchemaType is a JSON schema primitive type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the provider-neutral description of a structured response.
// Each provider translates it into its own native form.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSON renders the schema as indented JSON for embedding in a prompt.
func (s *Schema) JSON() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *Schema) toOpenAI() jsonschema.Definition {
	def := jsonschema.Definition{
		Type:        jsonschema.DataType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if s.Type == TypeObject {
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, prop := range s.Properties {
			def.Properties[name] = prop.toOpenAI()
		}
		def.AdditionalProperties = false
	}
	if s.Items != nil {
		items := s.Items.toOpenAI()
		def.Items = &items
	}
	return def
}

func (s *Schema) toGenai() *genai.Schema {
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	case TypeInteger:
		out.Type = genai.TypeInteger
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toGenai()
		}
	}
	if s.Items != nil {
		out.Items = s.Items.toGenai()
	}
	return out
}

// schemaInstruction is appended to the system prompt for providers without
// native schema enforcement.
func schemaInstruction(s *Schema) string {
	if s == nil {
		return "Respond with ONLY a valid JSON object. No markdown, no explanation."
	}
	return fmt.Sprintf(`You must respond with ONLY a valid JSON object matching this schema:

%s

Do not include any text outside the JSON object. No markdown, no explanation.`, s.JSON())
}

// ExtractJSON strips markdown fences and any prose around the outermost
// JSON object in a model reply.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
