package backend

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var rawContract []byte

// ErrContractViolation is returned when a backend response does not match the published contract.
var ErrContractViolation = errors.New("response violates backend contract")

// Contract validates booking service responses against the embedded OpenAPI document.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
}

// RawContract returns the embedded OpenAPI document.
func RawContract() []byte {
	return rawContract
}

// LoadContract parses the embedded OpenAPI document and binds it to baseURL.
func LoadContract(baseURL string) (*Contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawContract)
	if err != nil {
		return nil, fmt.Errorf("failed to load backend contract: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid backend contract: %w", err)
	}

	// Route matching is host-aware, so point the document at the configured backend.
	doc.Servers = openapi3.Servers{{URL: strings.TrimRight(baseURL, "/")}}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}
	return &Contract{doc: doc, router: router}, nil
}

// Version reports the contract's info.version.
func (c *Contract) Version() string {
	if c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Version
}

// ValidateResponse checks a response body for the given request.
func (c *Contract) ValidateResponse(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("%w: no route for %s %s: %v", ErrContractViolation, req.Method, req.URL.Path, err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: status,
		Header: header,
		Options: &openapi3filter.Options{
			MultiError: true,
		},
	}
	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	return nil
}
