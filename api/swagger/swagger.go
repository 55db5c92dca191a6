package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Weekly class timetabling service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduling", "description": "Timetable generation and course validation"},
        {"name": "Results", "description": "Stored run retrieval and export"},
        {"name": "Archives", "description": "Database-persisted run history"}
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
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/sample": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Sample scheduling payload with field documentation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/generate": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Generate a weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Course list rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Requested engine unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/validate": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Validate a course list without scheduling it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateCoursesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/results/{id}": {
            "get": {
                "tags": ["Results"],
                "summary": "Fetch a stored generation result",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Result not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/results/{id}/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download a stored result as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "404": {"description": "Result not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/archives": {
            "get": {
                "tags": ["Archives"],
                "summary": "List recent archived runs",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 20}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Archive not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/archives/{id}": {
            "get": {
                "tags": ["Archives"],
                "summary": "Fetch one archived run with its slots",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Archived run not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Archive not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "faculty": {"type": "string"},
                "room": {"type": "string"},
                "sessionType": {"type": "string", "enum": ["lecture", "lab"]},
                "weeklyTarget": {"type": "integer", "minimum": 1, "maximum": 8},
                "weeklyCount": {"type": "integer", "minimum": 1, "maximum": 8},
                "duration": {"type": "integer", "minimum": 1, "maximum": 16},
                "labBlockLength": {"type": "integer", "minimum": 1, "maximum": 4},
                "availability": {
                    "type": "array",
                    "items": {"type": "string"},
                    "description": "Day or day-plus-slot tokens such as \"monday\" or \"mon 10:00-11:00\"; a single string is accepted too"
                }
            },
            "required": ["name", "faculty", "room"]
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "courses": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CourseRequest"}
                },
                "engine": {"type": "string", "enum": ["greedy", "exact"]},
                "seed": {"type": "integer"}
            },
            "required": ["courses"]
        },
        "ValidateCoursesRequest": {
            "type": "object",
            "properties": {
                "courses": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CourseRequest"}
                }
            },
            "required": ["courses"]
        },
        "CourseIssue": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "WarningResponse": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "token": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "ValidateCoursesResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "issues": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CourseIssue"}
                },
                "warnings": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WarningResponse"}
                }
            }
        },
        "AssignmentResponse": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "sessionType": {"type": "string"},
                "day": {"type": "string"},
                "slot": {"type": "string"},
                "faculty": {"type": "string"},
                "room": {"type": "string"},
                "durationHours": {"type": "integer"}
            }
        },
        "CourseOutcomeResponse": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "sessionType": {"type": "string"},
                "weeklyTarget": {"type": "integer"},
                "expectedHours": {"type": "integer"},
                "scheduledHours": {"type": "integer"},
                "failureReason": {"type": "string"}
            }
        },
        "ConflictResponse": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "slot": {"type": "string"},
                "resource": {"type": "string"},
                "courses": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "ConflictReportResponse": {
            "type": "object",
            "properties": {
                "facultyConflicts": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ConflictResponse"}
                },
                "roomConflicts": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ConflictResponse"}
                },
                "cohortConflicts": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ConflictResponse"}
                },
                "totalCount": {"type": "integer"}
            }
        },
        "PenaltyResponse": {
            "type": "object",
            "properties": {
                "breakdown": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                },
                "totalPenalty": {"type": "integer"},
                "qualityRating": {"type": "string"}
            }
        },
        "StatisticsResponse": {
            "type": "object",
            "properties": {
                "totalCourses": {"type": "integer"},
                "fullySatisfied": {"type": "integer"},
                "expectedHours": {"type": "integer"},
                "scheduledHours": {"type": "integer"},
                "coveragePercent": {"type": "number"},
                "daysUtilized": {"type": "integer"},
                "facultyCount": {"type": "integer"},
                "roomCount": {"type": "integer"}
            }
        },
        "GenerateTimetableResponse": {
            "type": "object",
            "properties": {
                "resultId": {"type": "string"},
                "engine": {"type": "string"},
                "generatedAt": {"type": "string", "format": "date-time"},
                "timetable": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/AssignmentResponse"}
                        }
                    }
                },
                "outcomes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CourseOutcomeResponse"}
                },
                "failureReasons": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                },
                "conflicts": {"$ref": "#/definitions/ConflictReportResponse"},
                "penalty": {"$ref": "#/definitions/PenaltyResponse"},
                "statistics": {"$ref": "#/definitions/StatisticsResponse"},
                "warnings": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WarningResponse"}
                }
            }
        },
        "SampleResponse": {
            "type": "object",
            "properties": {
                "sample": {"$ref": "#/definitions/GenerateTimetableRequest"},
                "fieldDescriptions": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                },
                "days": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "slots": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "ScheduleArchive": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "engine": {"type": "string"},
                "courseCount": {"type": "integer"},
                "expectedHours": {"type": "integer"},
                "scheduledHours": {"type": "integer"},
                "totalPenalty": {"type": "integer"},
                "qualityRating": {"type": "string"},
                "failureReasons": {"type": "object"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "ScheduleArchiveSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "archiveId": {"type": "string"},
                "course": {"type": "string"},
                "sessionType": {"type": "string"},
                "dayOfWeek": {"type": "integer"},
                "timeSlot": {"type": "integer"},
                "faculty": {"type": "string"},
                "room": {"type": "string"},
                "durationHours": {"type": "integer"}
            }
        },
        "ArchivedRun": {
            "type": "object",
            "properties": {
                "archive": {"$ref": "#/definitions/ScheduleArchive"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ScheduleArchiveSlot"}
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
