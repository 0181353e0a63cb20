// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Admin login", "responses": {"200": {"description": "token and user"}, "401": {"description": "Invalid credentials"}}}},
        "/home": {"get": {"tags": ["dashboard"], "summary": "Home page overview", "responses": {"200": {"description": "live, today, slides, standings"}}}},
        "/matches": {
            "get": {"tags": ["matches"], "summary": "List matches", "parameters": [
                {"type": "string", "name": "status", "in": "query"},
                {"type": "string", "name": "group", "in": "query"},
                {"type": "string", "name": "date", "in": "query"}
            ], "responses": {"200": {"description": "matches"}, "422": {"description": "Invalid filter"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Create a match", "responses": {"201": {"description": "match"}, "422": {"description": "Validation errors by field"}}}
        },
        "/matches/{matchID}": {
            "get": {"tags": ["matches"], "summary": "Get a match", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "match"}, "404": {"description": "Match not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Replace the descriptive fields of a match", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "match"}, "409": {"description": "Stale version"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Delete a match", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"204": {"description": "deleted"}}}
        },
        "/matches/{matchID}/score": {"post": {"security": [{"BearerAuth": []}], "tags": ["score"], "summary": "Toggle one rally slot", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "score update"}, "409": {"description": "Completed match, ambiguous winner or stale version"}, "422": {"description": "Slot out of range"}}}},
        "/matches/{matchID}/complete": {"post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Complete a live match", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "match"}, "409": {"description": "Not live, tied or stale version"}}}},
        "/groups/{group}/fixtures": {"post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Generate round-robin fixtures for a group", "parameters": [{"type": "string", "name": "group", "in": "path", "required": true}], "responses": {"201": {"description": "matches"}}}},
        "/standings": {"get": {"tags": ["standings"], "summary": "Overall standings", "responses": {"200": {"description": "standings"}}}},
        "/standings/groups": {"get": {"tags": ["standings"], "summary": "Standings per group", "responses": {"200": {"description": "groups"}}}},
        "/slides": {"get": {"tags": ["slides"], "summary": "List slides", "responses": {"200": {"description": "slides"}}}},
        "/preferences/{clientID}": {"put": {"tags": ["preferences"], "summary": "Merge UI preferences", "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}], "responses": {"200": {"description": "preferences"}, "422": {"description": "Unknown key or bad value"}}}},
        "/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["transfer"], "summary": "Export all matches", "responses": {"200": {"description": "export document"}}}},
        "/import": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfer"], "summary": "Import matches from an export document", "responses": {"201": {"description": "imported count"}, "422": {"description": "Errors keyed by matches[i].field"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Scoreboard API",
	Description:      "Live badminton scoreboard: matches, rally scores, standings and slides.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
