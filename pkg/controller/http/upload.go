package http

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xeipuuv/gojsonschema"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

//go:embed schemas/client_data.json
var clientDataSchema string

type uploadResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	ClientName       string `json:"client_name"`
	ProcessesCount   int    `json:"processes_count"`
	AssessmentsCount int    `json:"assessments_count"`
}

type uploadErrorResponse struct {
	Error  string   `json:"error"`
	Issues []string `json:"issues"`
}

// handleUpload validates a client assessment submission against the data
// schema and reports what was received
func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		respondError(w, goerr.Wrap(err, "failed to read request body"))
		return
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(clientDataSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		writeError(w, goerr.Wrap(err, "invalid JSON format", goerr.T(types.TagBadRequest)), http.StatusBadRequest)
		return
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		writeJSON(w, r, http.StatusBadRequest, &uploadErrorResponse{
			Error:  "client data failed validation",
			Issues: issues,
		})
		return
	}

	var data model.ClientData
	if err := json.Unmarshal(body, &data); err != nil {
		writeError(w, goerr.Wrap(err, "invalid JSON format", goerr.T(types.TagBadRequest)), http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, &uploadResponse{
		Status:           "success",
		Message:          "Client data uploaded successfully",
		ClientName:       data.ClientName,
		ProcessesCount:   len(data.Processes),
		AssessmentsCount: len(data.Assessments),
	})
}
