package httpapi

import (
	"embed"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Schema names, matching the files under schemas/.
const (
	schemaRisk       = "risk_score"
	schemaMatch      = "match"
	schemaProjection = "projection"
	schemaDFM        = "dfm"
	schemaEnquiry    = "enquiry"
)

// validationError lists why a request body was rejected.
type validationError struct {
	details []string
}

func (e *validationError) Error() string {
	return "invalid request: " + strings.Join(e.details, "; ")
}

type schemaSet map[string]*gojsonschema.Schema

func loadSchemas() (schemaSet, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, eris.Wrap(err, "httpapi: read schemas")
	}
	set := make(schemaSet, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "httpapi: read schema %s", e.Name())
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, eris.Wrapf(err, "httpapi: compile schema %s", e.Name())
		}
		set[strings.TrimSuffix(e.Name(), ".json")] = s
	}
	return set, nil
}

// decode reads the request body, validates it against the named schema and
// unmarshals it into out.
func (set schemaSet) decode(w http.ResponseWriter, r *http.Request, name string, out any) error {
	schema, ok := set[name]
	if !ok {
		return eris.Errorf("httpapi: no schema %q", name)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &validationError{details: []string{"request body too large or unreadable"}}
	}
	if !json.Valid(body) {
		return &validationError{details: []string{"request body is not valid JSON"}}
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return eris.Wrapf(err, "httpapi: validate %s", name)
	}
	if !res.Valid() {
		details := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			details[i] = desc.String()
		}
		return &validationError{details: details}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &validationError{details: []string{err.Error()}}
	}
	return nil
}
