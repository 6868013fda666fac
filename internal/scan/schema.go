package scan

import (
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the shape the secrets:open response is expected
// to have. Validation is advisory: fetch logs mismatches as warnings and
// carries on, since the API may grow fields this tool does not know about.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["secrets"],
  "properties": {
    "secrets": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "static_version": {
            "type": "object",
            "properties": {
              "value": {"type": "string"},
              "version": {"type": "integer"}
            }
          }
        }
      }
    }
  }
}`

// ValidateDocument checks a raw secrets document against the expected shape.
// It returns one description per violation, or an error if the validator
// itself could not run.
func ValidateDocument(body []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}
