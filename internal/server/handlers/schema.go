// Serves JSON Schemas for the API payload types.

package handlers

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/studylenses/studylenses/internal/server/dto"
)

// SchemaResponse maps payload names to their JSON Schemas.
type SchemaResponse struct {
	Tree   *jsonschema.Schema `json:"tree"`
	File   *jsonschema.Schema `json:"file"`
	Config *jsonschema.Schema `json:"config"`
	Load   *jsonschema.Schema `json:"load"`
}

// SchemaHandler reflects the response DTOs into JSON Schemas so frontend
// lenses can validate payloads without hand-written type definitions.
type SchemaHandler struct {
	resp SchemaResponse
}

// NewSchemaHandler creates a new schema handler. Reflection happens once at
// construction; the types never change at runtime.
func NewSchemaHandler() *SchemaHandler {
	r := new(jsonschema.Reflector)
	return &SchemaHandler{resp: SchemaResponse{
		Tree:   r.Reflect(&dto.TreeResponse{}),
		File:   r.Reflect(&dto.FileResponse{}),
		Config: r.Reflect(&dto.ConfigResponse{}),
		Load:   r.Reflect(&dto.LoadResponse{}),
	}}
}

// Schema returns the schemas for the API response payloads.
func (h *SchemaHandler) Schema(ctx context.Context, req *dto.EmptyRequest) (*SchemaResponse, error) {
	resp := h.resp
	return &resp, nil
}
