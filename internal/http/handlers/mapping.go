package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/platform/apierr"
	"github.com/yungbote/parammap-backend/internal/services"
)

type MappingHandler struct {
	mappings    services.MappingService
	maxPageSize int
}

func NewMappingHandler(mappings services.MappingService, maxPageSize int) *MappingHandler {
	return &MappingHandler{mappings: mappings, maxPageSize: maxPageSize}
}

// GET /mappings?vendor_id=&namespace=
func (h *MappingHandler) ListMappings(c *gin.Context) {
	page, ok := pageQuery(c, h.maxPageSize)
	if !ok {
		return
	}
	q := services.MappingQuery{
		VendorID:  c.Query("vendor_id"),
		Namespace: c.Query("namespace"),
	}
	out, err := h.mappings.List(c.Request.Context(), q, page)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /mappings
func (h *MappingHandler) CreateMapping(c *gin.Context) {
	var body services.MappingCreate
	if !bindBody(c, "mapping.create", &body) {
		return
	}
	m, err := h.mappings.Create(c.Request.Context(), body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, m)
}

// POST /mappings/bulk
// Body is {"items": [...]} or a bare array. Item problems are reported per
// item; only an unreadable envelope fails the request.
func (h *MappingHandler) BulkUpsertMappings(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.RespondDomainError(c, apierr.New(http.StatusBadRequest, "bad_request", err))
		return
	}
	items, err := bulkEnvelope(raw)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, h.mappings.BulkUpsert(c.Request.Context(), services.DecodeBulkItems(items)))
}

// GET /mappings/:id
func (h *MappingHandler) GetMapping(c *gin.Context) {
	m, err := h.mappings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, m)
}

// PATCH /mappings/:id
func (h *MappingHandler) UpdateMapping(c *gin.Context) {
	var body services.MappingPatch
	if !bindBody(c, "mapping.update", &body) {
		return
	}
	m, err := h.mappings.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, m)
}

// DELETE /mappings/:id
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	if err := h.mappings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "Deleted")
}

var errBulkEnvelope = apierr.BadRequest("Body must be an array or include an 'items' array")

func bulkEnvelope(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errBulkEnvelope
	}
	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errBulkEnvelope
		}
		return items, nil
	}
	var env struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Items == nil {
		return nil, errBulkEnvelope
	}
	return env.Items, nil
}
