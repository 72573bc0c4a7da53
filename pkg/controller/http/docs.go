package http

import (
	_ "embed"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var (
	openAPIOnce sync.Once
	openAPIJSON []byte
	openAPIErr  error
)

func loadOpenAPISpec() ([]byte, error) {
	openAPIOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPIYAML)
		if err != nil {
			openAPIErr = goerr.Wrap(err, "failed to load OpenAPI document")
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			openAPIErr = goerr.Wrap(err, "invalid OpenAPI document")
			return
		}
		openAPIJSON, openAPIErr = doc.MarshalJSON()
	})
	return openAPIJSON, openAPIErr
}

// handleOpenAPISpec serves the API description as JSON
func (h *handler) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec, err := loadOpenAPISpec()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(spec); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write OpenAPI document", "error", err)
	}
}

const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>PRISM Brain API</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <redoc spec-url="/openapi.json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`

// handleDocs serves the interactive API documentation page
func (h *handler) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(docsPage)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write docs page", "error", err)
	}
}
