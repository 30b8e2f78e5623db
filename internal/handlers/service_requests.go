package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"panchayat/internal/models"
)

type serviceRequestRequest struct {
	ServiceTypeID string `json:"serviceTypeId" binding:"required"`
	Details       string `json:"details" binding:"required,max=2000"`
}

type statusRequest struct {
	Status  string `json:"status" binding:"required,requeststatus"`
	Remarks string `json:"remarks" binding:"max=1000"`
}

func (h HandlerSet) SubmitServiceRequest(c *gin.Context) {
	var req serviceRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.svc.ServiceRequests.Submit(c.Request.Context(), identity(c), models.ServiceRequest{
		ServiceTypeID: req.ServiceTypeID,
		Details:       req.Details,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) MyServiceRequests(c *gin.Context) {
	items, err := h.svc.ServiceRequests.Mine(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) ListServiceRequests(c *gin.Context) {
	status := models.ServiceRequestStatus(c.Query("status"))

	items, err := h.svc.ServiceRequests.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) UpdateServiceRequestStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.svc.ServiceRequests.UpdateStatus(
		c.Request.Context(),
		identity(c),
		c.Param("id"),
		models.ServiceRequestStatus(req.Status),
		req.Remarks,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
