// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/webhooks/square": {
            "post": {
                "tags": ["webhooks"],
                "summary": "Square webhook receiver",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "handled or ignored", "schema": {"$ref": "#/definitions/success"}},
                    "401": {"description": "invalid signature", "schema": {"$ref": "#/definitions/error"}},
                    "500": {"description": "unexpected failure", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new member",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "created"}, "409": {"description": "user exists", "schema": {"$ref": "#/definitions/error"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "token issued"}, "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/error"}}}
            }
        },
        "/v1/members/{userID}": {
            "get": {
                "tags": ["members"],
                "summary": "Get a member",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "userID", "required": true, "type": "string"}],
                "responses": {"200": {"description": "member"}, "403": {"description": "forbidden"}, "404": {"description": "not found"}}
            }
        },
        "/v1/members/{userID}/creator-types": {
            "put": {
                "tags": ["members"],
                "summary": "Set creator categories",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "userID", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "member"}, "422": {"description": "invalid category"}}
            }
        },
        "/v1/members/{userID}/subscribe": {
            "post": {
                "tags": ["members"],
                "summary": "Start a membership checkout",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "userID", "required": true, "type": "string"}],
                "responses": {"201": {"description": "payment link"}}
            }
        },
        "/v1/members/{userID}/role-sync": {
            "post": {
                "tags": ["admin"],
                "summary": "Re-sync a member's chat roles",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "userID", "required": true, "type": "string"}],
                "responses": {"200": {"description": "sync result"}, "422": {"description": "no chat account"}}
            }
        },
        "/v1/members/{userID}/chat-invite": {
            "post": {
                "tags": ["chat"],
                "summary": "Invite a member to the chat server",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "userID", "required": true, "type": "string"}],
                "responses": {"201": {"description": "invite"}, "403": {"description": "membership not active"}, "409": {"description": "already joined"}}
            }
        },
        "/v1/sponsorships/checkout": {
            "post": {
                "tags": ["sponsorships"],
                "summary": "Sponsor a member",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "payment link"}, "404": {"description": "recipient not found"}}
            }
        },
        "/v1/admin/reconcile": {
            "post": {
                "tags": ["admin"],
                "summary": "Drain the reconciliation queue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "limit", "type": "integer"}],
                "responses": {"200": {"description": "drain result"}}
            }
        },
        "/v1/admin/announcements": {
            "post": {
                "tags": ["admin"],
                "summary": "Post an announcement",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"message": {"type": "string"}}}}],
                "responses": {"204": {"description": "posted"}, "422": {"description": "invalid message"}}
            }
        },
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "ok"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "ok"}, "503": {"description": "degraded"}}}}
    },
    "definitions": {
        "success": {"type": "object", "properties": {"success": {"type": "boolean"}}},
        "error": {"type": "object", "properties": {"error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Makerspace Membership API",
	Description:      "Membership synchronizer for Square payments and Discord roles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
