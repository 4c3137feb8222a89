package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Charaks Admin API",
        "description": "Doctor verification and admin management for the Charaks healthcare platform",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Admin session management"},
        {"name": "Doctors", "description": "Doctor application verification lifecycle"},
        {"name": "Sub-Admins", "description": "Delegated verification accounts"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/doctors": {
            "get": {
                "tags": ["Doctors"],
                "summary": "List one status bucket with optional search",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Bucket listing"}
                }
            }
        },
        "/api/v1/doctors/counts": {
            "get": {
                "tags": ["Doctors"],
                "summary": "Per-status totals",
                "responses": {
                    "200": {"description": "Counts"}
                }
            }
        },
        "/api/v1/doctors/{id}/approve": {
            "post": {
                "tags": ["Doctors"],
                "summary": "Approve a pending application (remarks optional)",
                "responses": {
                    "200": {"description": "Updated application"},
                    "404": {"description": "Unknown application"},
                    "409": {"description": "Application is not pending"}
                }
            }
        },
        "/api/v1/doctors/{id}/reject": {
            "post": {
                "tags": ["Doctors"],
                "summary": "Reject a pending application (remarks mandatory)",
                "responses": {
                    "200": {"description": "Updated application"},
                    "400": {"description": "Missing rejection remarks"},
                    "404": {"description": "Unknown application"},
                    "409": {"description": "Application is not pending"}
                }
            }
        },
        "/api/v1/sub-admins": {
            "get": {
                "tags": ["Sub-Admins"],
                "summary": "List sub-admin accounts",
                "responses": {
                    "200": {"description": "Listing"}
                }
            },
            "post": {
                "tags": ["Sub-Admins"],
                "summary": "Add a sub-admin account",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        }
    },
    "definitions": {
        "StatusCounts": {
            "type": "object",
            "properties": {
                "pending": {"type": "integer"},
                "approved": {"type": "integer"},
                "rejected": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
