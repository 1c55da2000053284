package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the broker.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>pubsub-broker - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the broker endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "pubsub-broker", "version": "v1.0.0" },
  "paths": {
    "/subscribe/{topic}": {
      "post": {
        "summary": "Subscribe a URL to a topic, creating the topic when missing",
        "parameters": [{ "name": "topic", "in": "path", "required": true, "schema": { "type": "string" } }],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"url":{"type":"string"}}}}}},
        "responses": { "201": { "description": "subscription added, topic returned" }, "400": { "description": "url missing or invalid" } }
      }
    },
    "/publish/{topic}": {
      "post": {
        "summary": "Publish a message to every subscriber of a topic",
        "parameters": [{ "name": "topic", "in": "path", "required": true, "schema": { "type": "string" } }],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"message":{"type":"string"}}}}}},
        "responses": { "201": { "description": "event recorded and dispatched" }, "400": { "description": "message missing" }, "422": { "description": "topic does not exist" } }
      }
    },
    "/topics": { "get": { "summary": "List topics", "responses": { "200": { "description": "topics in creation order" } } } },
    "/topics/{topic}": {
      "get": {
        "summary": "Get one topic with its subscriptions and events",
        "parameters": [{ "name": "topic", "in": "path", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "topic" }, "422": { "description": "topic does not exist" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } }
  }
}`
