package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/pubsub/backend/broker/internal/topic/service"
	"github.com/rs/zerolog"
)

type subscribeRequest struct {
	URL string `json:"url"`
}

type publishRequest struct {
	Message string `json:"message"`
}

// RegisterBrokerRoutes registers the subscribe/publish endpoints and the
// read-only topic listing. log receives errors the handlers cannot classify.
func RegisterBrokerRoutes(r *gin.Engine, svc service.Service, log zerolog.Logger) {
	r.POST("/subscribe/:topic", func(c *gin.Context) {
		var req subscribeRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			abortWithError(c, invalidParams(err.Error()))
			return
		}
		t, err := svc.Subscribe(c.Request.Context(), c.Param("topic"), req.URL)
		if err != nil {
			abortWithError(c, fromServiceError(log, err))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": t})
	})

	r.POST("/publish/:topic", func(c *gin.Context) {
		var req publishRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			abortWithError(c, invalidParams(err.Error()))
			return
		}
		if err := svc.Publish(c.Request.Context(), c.Param("topic"), req.Message); err != nil {
			abortWithError(c, fromServiceError(log, err))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "success"})
	})

	r.GET("/topics", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			abortWithError(c, fromServiceError(log, err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": list})
	})

	r.GET("/topics/:topic", func(c *gin.Context) {
		t, err := svc.Get(c.Request.Context(), c.Param("topic"))
		if err != nil {
			abortWithError(c, fromServiceError(log, err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": t})
	})
}

// bindOptionalJSON decodes the body when there is one; an empty body leaves req
// zeroed so the service reports the missing field.
func bindOptionalJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
