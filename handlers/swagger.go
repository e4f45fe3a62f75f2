package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the testimonials API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>testimonials - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "testimonials", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Testimonial": {
        "type": "object",
        "properties": {
          "id": {"type":"string"}, "name": {"type":"string"}, "message": {"type":"string"},
          "jobTitle": {"type":"string"}, "company": {"type":"string"}, "image": {"type":"string"},
          "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"}
        }
      },
      "Submission": {
        "type": "object",
        "required": ["name","message","jobTitle","company"],
        "properties": {
          "name": {"type":"string"}, "message": {"type":"string"}, "jobTitle": {"type":"string"}, "company": {"type":"string"},
          "image": {"type":"string","format":"binary","description":"JPEG, PNG or GIF"}
        }
      },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "fields": {"type":"array","items":{"type":"string"}} } }
    }
  },
  "paths": {
    "/api/testimonials": {
      "get": { "summary": "List testimonials, newest first", "responses": { "200": { "description": "array of testimonials" } } },
      "post": {
        "summary": "Submit a testimonial",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Submission"} } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" }, "429": { "description": "rate limited" } }
      }
    },
    "/api/testimonials/stats": {
      "get": {
        "summary": "Testimonial counts per day, week or month",
        "parameters": [ { "name": "granularity", "in": "query", "schema": {"type":"string","enum":["day","week","month"],"default":"week"} } ],
        "responses": { "200": { "description": "bucketed counts" }, "400": { "description": "unknown granularity" } }
      }
    },
    "/api/testimonials/admin/create": {
      "post": { "summary": "Create a testimonial (admin)", "security": [{"bearer":[]}], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Submission"} } } }, "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" }, "401": { "description": "unauthorized" } } }
    },
    "/api/testimonials/admin/update/{id}": {
      "put": { "summary": "Replace a testimonial's fields and optionally its image", "security": [{"bearer":[]}], "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Submission"} } } }, "responses": { "200": { "description": "updated" }, "400": { "description": "validation failed" }, "404": { "description": "not found" } } }
    },
    "/api/testimonials/admin/delete/{id}": {
      "delete": { "summary": "Delete a testimonial", "security": [{"bearer":[]}], "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/testimonials/admin/logout": {
      "post": { "summary": "Revoke the presented admin token", "security": [{"bearer":[]}], "responses": { "200": { "description": "logged out" }, "503": { "description": "revocation unavailable" } } }
    },
    "/uploads/{name}": {
      "get": { "summary": "Fetch an uploaded image", "parameters": [ { "name": "name", "in": "path", "required": true, "schema": {"type":"string"} } ], "responses": { "200": { "description": "image bytes" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
