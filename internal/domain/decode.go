package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var requestSchema = mustSchema(schemaJSON)

func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("domain: tenancy request schema: %v", err))
	}
	return s
}

// DecodeRequest parses a request body into a TenancyRequest.
//
// An empty body, or one that decodes to a falsy JSON value, yields a
// ValidationError wrapping ErrNoData. In strict mode every schema violation
// is reported in a single ValidationError. Otherwise only a missing field or
// a wrong container type fails, as an InternalError, the way rendering
// would have failed on the lookup.
func DecodeRequest(raw []byte, strict bool) (*TenancyRequest, error) {
	if isBlank(raw) {
		return nil, noData()
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, Internal(fmt.Errorf("invalid JSON body: %w", err))
	}
	if !truthy(probe) {
		return nil, noData()
	}

	fields, err := validate(raw)
	if err != nil {
		return nil, Internal(err)
	}
	if strict && len(fields) > 0 {
		fe := make([]FieldError, len(fields))
		for i, f := range fields {
			fe[i] = f.FieldError
		}
		return nil, NewValidationError("Invalid tenancy data", fe...)
	}
	if !strict {
		if err := firstLookupFailure(fields); err != nil {
			return nil, Internal(err)
		}
	}

	var req TenancyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, Internal(fmt.Errorf("decode tenancy request: %w", err))
	}
	return &req, nil
}

type schemaFailure struct {
	FieldError
	kind   string
	isNull bool
}

// validate runs the embedded JSON schema and returns every violation sorted
// by field path.
func validate(raw []byte) ([]schemaFailure, error) {
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate tenancy request: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	out := make([]schemaFailure, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		out = append(out, schemaFailure{
			FieldError: FieldError{Field: fieldPath(re), Reason: reason(re)},
			kind:       re.Type(),
			isNull:     re.Value() == nil,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

// firstLookupFailure reports the first failure that rendering would hit.
// A null text field is interpolated as "None" and so is not a failure.
// hasDocument is read for truthiness only, but a null or non-object documents
// section or entry fails.
func firstLookupFailure(failures []schemaFailure) error {
	for _, f := range failures {
		if strings.Count(f.Field, ".") >= 2 && strings.HasPrefix(f.Field, "documents.") {
			continue
		}
		switch f.kind {
		case "required":
			return &MissingFieldError{Path: f.Field}
		case "invalid_type":
			if f.isNull && isTextPath(f.Field) {
				continue
			}
			return fmt.Errorf("field '%s' %s", f.Field, f.Reason)
		}
	}
	return nil
}

// isTextPath reports whether path names a scalar form value such as
// landlord.fullName or tenants.1.email rather than a section or list item.
func isTextPath(path string) bool {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || strings.HasPrefix(path, "documents.") {
		return false
	}
	last := path[i+1:]
	if _, err := strconv.Atoi(last); err == nil {
		return false
	}
	return true
}

func fieldPath(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = ""
	}
	if re.Type() != "required" {
		if field == "" {
			return "(root)"
		}
		return field
	}
	prop, _ := re.Details()["property"].(string)
	switch {
	case prop == "", field == prop, strings.HasSuffix(field, "."+prop):
		return field
	case field == "":
		return prop
	default:
		return field + "." + prop
	}
}

func reason(re gojsonschema.ResultError) string {
	switch re.Type() {
	case "required":
		return "is required"
	case "string_gte", "pattern":
		if strings.Contains(re.Field(), "phone") {
			return "must be a valid phone number"
		}
		if strings.Contains(re.Field(), "email") {
			return "must be a valid email address"
		}
		if strings.Contains(re.Field(), "postcode") {
			return "must be a valid UK postcode"
		}
		return "must not be empty"
	case "array_min_items":
		return "must list at least one tenant"
	case "array_max_items":
		return "must list at most four tenants"
	default:
		return re.Description()
	}
}
