// Package docs holds the OpenAPI document served at /docs. It follows the
// layout `swag init -g cmd/api/main.go` produces; regenerate with swag after
// changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "Footy Tipping"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/health/db": {
            "get": {
                "tags": ["health"],
                "summary": "Database health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/health/reports": {
            "get": {
                "tags": ["health"],
                "summary": "Report tracker health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/v1/rounds/current": {
            "get": {
                "tags": ["rounds"],
                "summary": "Get current round",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.currentRoundResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tips/form": {
            "get": {
                "tags": ["tips"],
                "summary": "Get tip form",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tips.Form"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tips": {
            "get": {
                "tags": ["tips"],
                "summary": "View tips",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"type": "integer", "description": "Round number (defaults to the current round)", "name": "round", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tips.RoundView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["tips"],
                "summary": "Submit tips",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"description": "Selections keyed by match id", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tips.Submission"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reports/{matchID}": {
            "get": {
                "tags": ["reports"],
                "summary": "Get match report",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"type": "string", "description": "Match id", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/report.Result"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/report.Result"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["reports"],
                "summary": "Cancel match report",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"type": "string", "description": "Match id", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/v1/chat/messages": {
            "get": {
                "tags": ["chat"],
                "summary": "List chat messages",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"type": "integer", "description": "Round number", "name": "round_number", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["chat"],
                "summary": "Post chat message",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"description": "Message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/chat.Post"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/store.ChatMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "userID": {"type": "integer", "description": "Signed-in user id set by the gateway", "name": "X-User-ID", "in": "header", "required": true}
    },
    "definitions": {
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        },
        "store.Fixture": {
            "type": "object",
            "properties": {
                "match_id": {"type": "string"},
                "round": {"type": "integer"},
                "home_team": {"type": "string"},
                "away_team": {"type": "string"},
                "kickoff": {"type": "string", "format": "date-time"},
                "winning_team": {"type": "string"}
            }
        },
        "store.Tip": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "match_id": {"type": "string"},
                "selected_team": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "store.ChatMessage": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "avatar": {"type": "string"},
                "round_number": {"type": "integer"},
                "message": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "handler.currentRoundResponse": {
            "type": "object",
            "properties": {
                "round_number": {"type": "integer"},
                "fixtures": {"type": "array", "items": {"$ref": "#/definitions/store.Fixture"}},
                "chat_open": {"type": "boolean"}
            }
        },
        "tips.Form": {
            "type": "object",
            "properties": {
                "round_number": {"type": "integer"},
                "fixtures": {"type": "array", "items": {"$ref": "#/definitions/store.Fixture"}},
                "submitted_tips": {"type": "array", "items": {"$ref": "#/definitions/store.Tip"}},
                "has_submitted": {"type": "boolean"},
                "closed": {"type": "boolean"},
                "next_cutoff": {"type": "string", "format": "date-time"},
                "cutoff_label": {"type": "string"}
            }
        },
        "tips.Submission": {
            "type": "object",
            "required": ["selections"],
            "properties": {
                "selections": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "tips.RoundView": {
            "type": "object",
            "properties": {
                "round_number": {"type": "integer"},
                "current_round": {"type": "integer"},
                "rounds": {"type": "array", "items": {"type": "integer"}},
                "fixtures": {"type": "array", "items": {"$ref": "#/definitions/store.Fixture"}},
                "tips": {"type": "array", "items": {"$ref": "#/definitions/store.Tip"}},
                "results": {"type": "object", "additionalProperties": {"type": "string"}},
                "visible_match_ids": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "chat.Post": {
            "type": "object",
            "properties": {
                "round_number": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "report.Result": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["ready", "pending", "error"]},
                "report": {"type": "string"},
                "job_id": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"},
                "cached": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Footy Tipping API",
	Description:      "Weekly rugby league tipping: fixtures, tips with visibility windows, round chat and asynchronous match intelligence reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
