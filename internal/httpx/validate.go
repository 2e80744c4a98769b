package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxBody = 1 << 20

const (
	schemaToken = `{
		"type": "object",
		"required": ["email"],
		"properties": {"email": {"type": "string", "minLength": 1}}
	}`

	schemaPlant = `{
		"type": "object",
		"required": ["name", "price", "quantity"],
		"properties": {
			"name":     {"type": "string", "minLength": 1},
			"category": {"type": "string"},
			"price":    {"type": "number", "minimum": 0},
			"quantity": {"type": "integer"}
		}
	}`

	schemaQuantity = `{
		"type": "object",
		"required": ["updateQuantity", "status"],
		"properties": {
			"updateQuantity": {"type": "number", "minimum": 0},
			"status":         {"enum": ["increase", "decrease"]}
		}
	}`

	schemaOrder = `{
		"type": "object",
		"required": ["plantId", "customer", "seller", "quantity", "price"],
		"properties": {
			"plantId":  {"type": "string", "minLength": 1},
			"customer": {"type": "object", "required": ["email"], "properties": {"email": {"type": "string", "minLength": 1}}},
			"seller": {"oneOf": [
				{"type": "string", "minLength": 1},
				{"type": "object", "required": ["email"], "properties": {"email": {"type": "string", "minLength": 1}}}
			]},
			"quantity": {"type": "number", "minimum": 1},
			"price":    {"type": "number", "minimum": 0}
		}
	}`

	schemaStatus = `{
		"type": "object",
		"required": ["status"],
		"properties": {"status": {"type": "string", "minLength": 1}}
	}`

	schemaUser = `{
		"type": "object",
		"required": ["email"],
		"properties": {"email": {"type": "string", "minLength": 1}}
	}`

	schemaRole = `{
		"type": "object",
		"required": ["role"],
		"properties": {"role": {"enum": ["customer", "seller", "admin"]}}
	}`

	schemaPayment = `{
		"type": "object",
		"required": ["plantId", "quantity"],
		"properties": {
			"plantId":  {"type": "string", "minLength": 1},
			"quantity": {"type": "integer", "minimum": 1}
		}
	}`
)

var (
	tokenSchema    = mustSchema(schemaToken)
	plantSchema    = mustSchema(schemaPlant)
	quantitySchema = mustSchema(schemaQuantity)
	orderSchema    = mustSchema(schemaOrder)
	statusSchema   = mustSchema(schemaStatus)
	userSchema     = mustSchema(schemaUser)
	roleSchema     = mustSchema(schemaRole)
	paymentSchema  = mustSchema(schemaPayment)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// decode reads the body, checks it against schema, and unmarshals it into
// out. Every failure is a requestError.
func decode(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return badRequest("unreadable body")
	}
	if !json.Valid(body) {
		return badRequest("invalid json")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return badRequest("invalid json")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return badRequest("%s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return badRequest("invalid json")
	}
	return nil
}
