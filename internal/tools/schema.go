package tools

import "github.com/invopop/jsonschema"

// schemaFor derives the JSON Schema for a tool's input struct. Field
// descriptions come from jsonschema_description tags.
func schemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	var v T
	return reflector.Reflect(&v)
}
