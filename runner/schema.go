package runner

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configSchema is the JSON Schema the pipeline definition must satisfy.
const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["package", "stages"],
	"additionalProperties": false,
	"properties": {
		"package": {"type": "string", "minLength": 1},
		"version_file": {"type": "string"},
		"artifact_dir": {"type": "string"},
		"stage_timeout": {"type": "string"},
		"schedules": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"every": {"type": "string"},
					"at": {"type": "string"}
				}
			}
		},
		"stages": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "run"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"run": {"type": "string", "minLength": 1},
					"branch": {"type": "string"},
					"continue_on_failure": {"type": "boolean"},
					"timeout": {"type": "string"}
				}
			}
		}
	}
}`

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewStringLoader(configSchema)
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// validateConfig checks a yaml pipeline definition against the config
// schema. The yaml document is converted to JSON for validation.
func validateConfig(yamlData []byte) error {
	var doc any
	if err := yaml.Unmarshal(yamlData, &doc); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON: %w", err)
	}

	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
