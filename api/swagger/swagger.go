package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Record API",
        "description": "Class records, transmuted grades, summaries and career progression for basic education teachers.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "ClassRecords", "description": "Subject quarter settings, score entry and computed grades"},
        {"name": "Summaries", "description": "Quarterly and end-of-year summaries"},
        {"name": "Career", "description": "Teaching position promotion calculator"},
        {"name": "Exports", "description": "CSV, PDF and XLSX downloads"}
    ],
    "paths": {
        "/class-records/settings": {
            "get": {
                "tags": ["ClassRecords"],
                "summary": "Get subject quarter settings",
                "parameters": [
                    {"name": "subject", "in": "query", "required": true, "type": "string"},
                    {"name": "quarter", "in": "query", "required": true, "type": "integer"},
                    {"name": "batchId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["ClassRecords"],
                "summary": "Update max scores and weights",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-records": {
            "get": {
                "tags": ["ClassRecords"],
                "summary": "Computed class record",
                "parameters": [
                    {"name": "subject", "in": "query", "required": true, "type": "string"},
                    {"name": "quarter", "in": "query", "required": true, "type": "integer"},
                    {"name": "batchId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-records/scores": {
            "put": {
                "tags": ["ClassRecords"],
                "summary": "Set or clear one score",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Score rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-records/scores/bulk": {
            "post": {
                "tags": ["ClassRecords"],
                "summary": "Import pasted scores",
                "description": "mode=atomic rejects the whole import on any invalid cell; mode=partialOnError saves the valid cells.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Rejected, data lists the failures", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/quarterly": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Quarterly summary",
                "parameters": [
                    {"name": "batchId", "in": "query", "required": true, "type": "string"},
                    {"name": "quarter", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/final": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Final grades and promotion status",
                "parameters": [
                    {"name": "batchId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/career/positions": {
            "get": {
                "tags": ["Career"],
                "summary": "List teaching positions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/career/evaluate": {
            "post": {
                "tags": ["Career"],
                "summary": "Evaluate promotion eligibility",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluateCareerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Render a class record or summary",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "quarter": {"type": "integer"},
                "batch_id": {"type": "string"},
                "written_works_max": {"type": "array", "items": {"type": "integer"}},
                "performance_tasks_max": {"type": "array", "items": {"type": "integer"}},
                "quarterly_assessment_max": {"type": "integer"},
                "ww_percentage": {"type": "number"},
                "pt_percentage": {"type": "number"},
                "qa_percentage": {"type": "number"}
            }
        },
        "ScoreRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject": {"type": "string"},
                "quarter": {"type": "integer"},
                "batch_id": {"type": "string"},
                "component": {"type": "string", "enum": ["ww", "pt", "qa"]},
                "index": {"type": "integer"},
                "score": {"type": "integer"}
            }
        },
        "BulkScoresRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "quarter": {"type": "integer"},
                "batch_id": {"type": "string"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "items": {"type": "array", "items": {"$ref": "#/definitions/BulkScoreItem"}}
            }
        },
        "BulkScoreItem": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "component": {"type": "string", "enum": ["ww", "pt", "qa"]},
                "index": {"type": "integer"},
                "score": {"type": "integer"}
            }
        },
        "EvaluateCareerRequest": {
            "type": "object",
            "properties": {
                "current_position": {"type": "string"},
                "years": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "school_year": {"type": "string"},
                            "objectives": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {
                                        "indicator_code": {"type": "string"},
                                        "type": {"type": "string", "enum": ["COI", "NCOI"]},
                                        "rating": {"type": "string", "enum": ["O", "VS", "S"]}
                                    }
                                }
                            }
                        }
                    }
                }
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["class_record", "quarterly_summary", "final_summary"]},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "batch_id": {"type": "string"},
                "subject": {"type": "string"},
                "quarter": {"type": "integer"}
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
