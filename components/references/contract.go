package references

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed contract/openapi.yaml
var contractDocument []byte

var (
	defaultContractOnce sync.Once
	defaultContract     *Contract
	defaultContractErr  error
)

// Contract validates creation request bodies against an OpenAPI document.
type Contract struct {
	doc    *openapi3.T
	schema *openapi3.Schema
}

// ContractDocument returns the embedded OpenAPI document.
func ContractDocument() []byte {
	return append([]byte(nil), contractDocument...)
}

// DefaultContract loads the embedded document once.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContract, defaultContractErr = LoadContract(context.Background(), contractDocument)
	})
	return defaultContract, defaultContractErr
}

// LoadContract parses raw and takes the JSON request schema of its first POST
// operation.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("references: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("references: validate contract: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("references: contract has no paths")
	}
	for _, item := range doc.Paths.Map() {
		if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
			continue
		}
		media := item.Post.RequestBody.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			continue
		}
		return &Contract{doc: doc, schema: media.Schema.Value}, nil
	}
	return nil, errors.New("references: contract has no JSON POST request body")
}

// Validate checks a decoded JSON body.
func (c *Contract) Validate(body any) error {
	if c == nil || c.schema == nil {
		return nil
	}
	return c.schema.VisitJSON(body, openapi3.MultiErrors())
}
