package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/appstate.schema.json
var appStateSchemaJSON []byte

const appStateSchemaURL = "https://todomaster.local/schema/appstate.json"

var (
	schemaOnce     sync.Once
	appStateSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(appStateSchemaURL, bytes.NewReader(appStateSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("loading app state schema: %w", err)
			return
		}
		appStateSchema, schemaErr = compiler.Compile(appStateSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compiling app state schema: %w", schemaErr)
		}
	})
	return appStateSchema, schemaErr
}

// ValidationError is one schema violation, located by a JSON pointer into
// the imported document.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// validateDocument checks text against the app state schema and returns
// every leaf violation joined into one error.
func validateDocument(text string) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var errs []error
		collectValidationErrors(ve, &errs)
		if len(errs) == 0 {
			return err
		}
		return errors.Join(errs...)
	}
	return nil
}

func collectValidationErrors(ve *jsonschema.ValidationError, out *[]error) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ValidationError{Path: ve.InstanceLocation, Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectValidationErrors(cause, out)
	}
}
