package handlers

import (
	"net/http"

	"policytracker/internal/services"
	"policytracker/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	*BaseHandler
	policyService services.PolicyService
	uploadService services.UploadService
}

func NewPolicyHandler(base *BaseHandler, policyService services.PolicyService, uploadService services.UploadService) *PolicyHandler {
	return &PolicyHandler{
		BaseHandler:   base,
		policyService: policyService,
		uploadService: uploadService,
	}
}

func (h *PolicyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	policies := rg.Group("/policies")
	{
		policies.POST("", h.Create)
		policies.GET("", h.List)
		policies.GET("/:id", h.Get)
		policies.PUT("/:id", h.Update)
		policies.DELETE("/:id", h.Delete)
		policies.GET("/:id/documents", h.ListDocuments)
	}
}

func (h *PolicyHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePolicyRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	policy, err := h.policyService.CreatePolicy(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, policy)
}

func (h *PolicyHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	policies, err := h.policyService.ListPolicies(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"policies": policies, "count": len(policies)})
}

func (h *PolicyHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	policy, err := h.policyService.GetPolicy(db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, policy)
}

func (h *PolicyHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePolicyRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	policy, err := h.policyService.UpdatePolicy(db, userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, policy)
}

func (h *PolicyHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.policyService.DeletePolicy(db, userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Policy deleted"})
}

func (h *PolicyHandler) ListDocuments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	uploads, err := h.uploadService.ListByPolicy(db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": uploads, "count": len(uploads)})
}
