package records

import (
	"reflect"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"

	"github.com/invopop/jsonschema"
)

var (
	flexTextType   = reflect.TypeFor[common.FlexText]()
	stringListType = reflect.TypeFor[common.StringList]()
)

// mapTolerantTypes describes the tolerant scalar types with the shapes they
// accept instead of their (unexported) struct layout.
func mapTolerantTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case flexTextType:
		return &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "number"},
			},
		}
	case stringListType:
		return &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{
				{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				{Type: "string"},
			},
		}
	}
	return nil
}

// GenerateSchema creates a JSON Schema for the given Go type using the same
// reflector settings as Schema.
func GenerateSchema(value any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapTolerantTypes,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// Schema is the JSON Schema of an agent batch, handed to upstream agents so
// their output matches what DecodePayload expects.
func Schema() *jsonschema.Schema {
	return GenerateSchema(common.AgentBatch{})
}
