package server

import "net/http"

// @title Kumo API
// @version 0.1
// @description Interactive documentation for the Kumo fetch API surface.
// @contact.name Kumo Maintainers
// @contact.url https://github.com/raysh454/kumo
// @BasePath /

// handleOpenAPIDoc serves the document the swagger UI at /docs/ renders.
func (s *Server) handleOpenAPIDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(openAPIDoc))
}

const openAPIDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Kumo API",
    "version": "0.1",
    "description": "Fetch jobs, browser step programs and snapshot history."
  },
  "basePath": "/",
  "paths": {
    "/jobs/fetch": {
      "post": {
        "summary": "Start a fetch job",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "responses": {"202": {"description": "job accepted"}}
      }
    },
    "/jobs": {
      "get": {
        "summary": "List jobs",
        "produces": ["application/json"],
        "responses": {"200": {"description": "jobs"}}
      }
    },
    "/jobs/{jobID}": {
      "get": {
        "summary": "Get a job",
        "produces": ["application/json"],
        "responses": {"200": {"description": "job"}, "404": {"description": "not found"}}
      },
      "delete": {
        "summary": "Cancel a job",
        "responses": {"204": {"description": "canceled"}}
      }
    },
    "/snapshots": {
      "get": {
        "summary": "List tracked URLs",
        "produces": ["application/json"],
        "responses": {"200": {"description": "urls"}}
      }
    },
    "/snapshots/latest": {
      "get": {
        "summary": "Latest snapshot for a URL",
        "produces": ["application/json"],
        "responses": {"200": {"description": "snapshot"}, "404": {"description": "not found"}}
      }
    },
    "/snapshots/history": {
      "get": {
        "summary": "Snapshot history for a URL",
        "produces": ["application/json"],
        "responses": {"200": {"description": "snapshots"}}
      }
    }
  }
}`
