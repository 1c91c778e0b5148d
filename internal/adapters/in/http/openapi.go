package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var contractYAML []byte

// Contract is the parsed API description. It validates incoming requests and
// is served to the Swagger UI.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
	json   string
}

func LoadContract() (*Contract, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(contractYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load API contract: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid API contract: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return &Contract{doc: doc, router: router, json: string(raw)}, nil
}

// ReadDoc makes the contract a swag.Swagger source for echo-swagger.
func (c *Contract) ReadDoc() string {
	return c.json
}

var registerSwagger sync.Once

// RegisterSwagger publishes the contract under swag's default instance name.
// Only the first contract registered in a process is served.
func (c *Contract) RegisterSwagger() {
	registerSwagger.Do(func() { swag.Register(swag.Name, c) })
}

// ValidateRequest checks parameters and JSON bodies against the contract.
// Paths the contract does not describe are let through. Security is checked
// by the basic-auth middleware, not here.
func (c *Contract) ValidateRequest(req *http.Request) error {
	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
			return nil
		}
		return err
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			ExcludeRequestBody: strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm),
		},
	}
	return openapi3filter.ValidateRequest(req.Context(), input)
}

// ValidationMiddleware rejects requests that break the contract with 400.
func (c *Contract) ValidationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := c.ValidateRequest(ctx.Request()); err != nil {
				return ctx.JSON(http.StatusBadRequest, ErrorResponse{
					Code:    http.StatusBadRequest,
					Message: contractViolation(err),
				})
			}
			return next(ctx)
		}
	}
}

func contractViolation(err error) string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) && len(multi) > 0 {
		parts := make([]string, 0, len(multi))
		for _, e := range multi {
			parts = append(parts, firstLine(e.Error()))
		}
		return "Invalid request: " + strings.Join(parts, "; ")
	}
	return "Invalid request: " + firstLine(err.Error())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
