package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"panchayat/internal/docstore"
	"panchayat/internal/service"
)

// filterParams maps accepted query parameters to stored field names.
type filterParams map[string]string

type contentHandler[T any, P service.Record[T]] struct {
	svc     *service.ContentService[T, P]
	filters filterParams
}

// registerContent mounts list/get for everyone and create/replace/delete behind editors.
func registerContent[T any, P service.Record[T]](group *gin.RouterGroup, svc *service.ContentService[T, P], filters filterParams, editors []gin.HandlerFunc) {
	h := contentHandler[T, P]{svc: svc, filters: filters}

	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("", append(editors, h.create)...)
	group.PUT("/:id", append(editors, h.replace)...)
	group.DELETE("/:id", append(editors, h.delete)...)
}

func (h contentHandler[T, P]) list(c *gin.Context) {
	filter := docstore.Filter{}
	for param, field := range h.filters {
		if v := c.Query(param); v != "" {
			filter[field] = v
		}
	}

	items, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h contentHandler[T, P]) get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h contentHandler[T, P]) create(c *gin.Context) {
	var doc T
	if !bindJSON(c, &doc) {
		return
	}

	item, err := h.svc.Create(c.Request.Context(), identity(c), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h contentHandler[T, P]) replace(c *gin.Context) {
	var doc T
	if !bindJSON(c, &doc) {
		return
	}

	item, err := h.svc.Replace(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h contentHandler[T, P]) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
