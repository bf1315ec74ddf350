package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the notes service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>noteshare — Swagger</title>
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

// Minimal OpenAPI document for the notes API. Kept by hand; regenerate when
// routes change.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "noteshare", "version": "v0.1.0" },
  "paths": {
    "/api/v1/notes": {
      "get": { "summary": "List notes visible to the caller", "responses": { "200": { "description": "note summaries" } } },
      "post": { "summary": "Create a note (authenticated callers own it, others create ownerless public notes)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"},"visibility":{"type":"string","enum":["public","private"]}}}}}}, "responses": { "201": { "description": "created" }, "400": { "description": "invalid visibility" } } }
    },
    "/api/v1/notes/{id}": {
      "get": { "summary": "Read a note", "responses": { "200": { "description": "the note" }, "403": { "description": "exists, not yours" }, "404": { "description": "absent or hidden" } } },
      "put": { "summary": "Update a note", "responses": { "200": { "description": "updated" }, "401": { "description": "invalid credentials" }, "403": { "description": "ownership mismatch" }, "404": { "description": "absent or hidden" } } },
      "delete": { "summary": "Delete a note", "responses": { "204": { "description": "deleted" }, "403": { "description": "ownership mismatch" }, "404": { "description": "absent or hidden" } } }
    },
    "/api/v1/notes/{id}/attachment": {
      "post": { "summary": "Upload the note attachment (runs under update access)", "responses": { "201": { "description": "stored" }, "503": { "description": "attachment storage not configured" } } },
      "get": { "summary": "Download the note attachment", "responses": { "200": { "description": "attachment bytes" }, "404": { "description": "no attachment" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Resolve the caller's local user (provisions on first sight)", "responses": { "200": { "description": "user or admin marker" }, "401": { "description": "authentication required" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
