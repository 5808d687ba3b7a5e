package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/services"
)

type VendorHandler struct {
	vendors     services.VendorService
	maxPageSize int
}

func NewVendorHandler(vendors services.VendorService, maxPageSize int) *VendorHandler {
	return &VendorHandler{vendors: vendors, maxPageSize: maxPageSize}
}

// GET /vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	page, ok := pageQuery(c, h.maxPageSize)
	if !ok {
		return
	}
	out, err := h.vendors.List(c.Request.Context(), page)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var body services.VendorCreate
	if !bindBody(c, "vendor.create", &body) {
		return
	}
	v, err := h.vendors.Create(c.Request.Context(), body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, v)
}

// GET /vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	v, err := h.vendors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// PATCH /vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var body services.VendorPatch
	if !bindBody(c, "vendor.update", &body) {
		return
	}
	v, err := h.vendors.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// DELETE /vendors/:id
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	if err := h.vendors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "Deleted")
}
