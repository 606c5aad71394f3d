package capability

// file: internal/capability/schema.go

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

// Supported parameter types.
const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param declares one named tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// InputSchema is the ordered list of a tool's parameters.
type InputSchema []Param

// Document renders the schema as a JSON Schema object, as advertised in tools/list.
func (s InputSchema) Document() map[string]interface{} {
	props := make(map[string]interface{}, len(s))
	required := make([]string, 0, len(s))
	for _, p := range s {
		prop := map[string]interface{}{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	doc := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// JSON returns the marshaled schema document.
func (s InputSchema) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(s.Document())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal input schema")
	}
	return b, nil
}

func (s InputSchema) check(toolID string) error {
	seen := make(map[string]struct{}, len(s))
	for _, p := range s {
		if p.Name == "" {
			return errors.Newf("tool %q: parameter with empty name", toolID)
		}
		if _, dup := seen[p.Name]; dup {
			return errors.Newf("tool %q: parameter %q declared twice", toolID, p.Name)
		}
		seen[p.Name] = struct{}{}
		switch p.Type {
		case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		default:
			return errors.Newf("tool %q: parameter %q has unsupported type %q", toolID, p.Name, p.Type)
		}
	}
	return nil
}

// argumentValidator checks raw tool arguments against a compiled input schema.
type argumentValidator struct {
	toolID string
	params InputSchema
	schema *jsonschema.Schema
	doc    json.RawMessage
}

func compileInputSchema(toolID string, s InputSchema) (*argumentValidator, error) {
	if err := s.check(toolID); err != nil {
		return nil, err
	}
	doc, err := s.JSON()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	resourceID := "mem://tools/" + url.PathEscape(toolID) + "/input-schema.json"
	if err := compiler.AddResource(resourceID, bytes.NewReader(doc)); err != nil {
		return nil, errors.Wrapf(err, "tool %q: failed to add input schema resource", toolID)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, errors.Wrapf(err, "tool %q: failed to compile input schema", toolID)
	}
	return &argumentValidator{toolID: toolID, params: s, schema: compiled, doc: doc}, nil
}

// argumentsParam names the whole arguments object when no single parameter is at fault.
const argumentsParam = "arguments"

func (v *argumentValidator) validate(raw json.RawMessage) (Arguments, error) {
	var instance interface{} = map[string]interface{}{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &instance); err != nil {
			return nil, mcperrors.NewValidationError(v.toolID, argumentsParam, "must be valid JSON", err)
		}
	}

	obj, ok := instance.(map[string]interface{})
	if !ok {
		return nil, mcperrors.NewValidationError(v.toolID, argumentsParam, "must be an object", nil)
	}

	// Report missing parameters in declaration order before asking the schema.
	for _, p := range v.params {
		if _, present := obj[p.Name]; p.Required && !present {
			return nil, mcperrors.NewValidationError(v.toolID, p.Name, "is required", nil)
		}
	}

	if err := v.schema.Validate(obj); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			param, reason := offendingParameter(valErr)
			return nil, mcperrors.NewValidationError(v.toolID, param, reason, valErr)
		}
		return nil, mcperrors.NewInternalError("Argument validation failed", err, map[string]interface{}{"toolName": v.toolID})
	}
	return Arguments(obj), nil
}

// offendingParameter picks the first error located at a property of the arguments object.
func offendingParameter(valErr *jsonschema.ValidationError) (string, string) {
	for _, e := range valErr.BasicOutput().Errors {
		loc := strings.TrimPrefix(e.InstanceLocation, "/")
		if loc == "" {
			continue
		}
		name := strings.SplitN(loc, "/", 2)[0]
		name = strings.NewReplacer("~1", "/", "~0", "~").Replace(name)
		return name, e.Error
	}
	return argumentsParam, valErr.Message
}
