// Package docs holds the OpenAPI document served at /swagger/*. It mirrors the
// swag annotations on the handlers and is kept in step with them by
// docs_test.go.
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
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"type": "string", "description": "Email or nickname", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/verify-email/{user_id}/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify email",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "path", "required": true},
                    {"type": "string", "description": "Verification token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/verify-email/resend": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Resend verification email",
                "parameters": [
                    {"description": "Email address", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resendVerificationRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/verify-email/{token}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify email by token",
                "parameters": [
                    {"type": "string", "description": "Verification token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Number of users to skip", "name": "skip", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "User details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/unlock": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Unlock a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/profile-picture": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile picture",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Picture URL", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.profilePictureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/professional": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update professional info",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Profile URLs", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.professionalInfoRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Link": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "href": {"type": "string"},
                "method": {"type": "string"},
                "rel": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.createUserRequest": {
            "type": "object",
            "required": ["email", "nickname", "password"],
            "properties": {
                "bio": {"type": "string", "maxLength": 500},
                "email": {"type": "string", "maxLength": 255},
                "first_name": {"type": "string", "maxLength": 100},
                "github_profile_url": {"type": "string", "maxLength": 255},
                "last_name": {"type": "string", "maxLength": 100},
                "linkedin_profile_url": {"type": "string", "maxLength": 255},
                "nickname": {"type": "string"},
                "password": {"type": "string"},
                "profile_picture_url": {"type": "string", "maxLength": 255},
                "role": {"type": "string", "enum": ["ANONYMOUS", "AUTHENTICATED", "MANAGER", "ADMIN"]}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.professionalInfoRequest": {
            "type": "object",
            "properties": {
                "github_profile_url": {"type": "string", "maxLength": 255},
                "linkedin_profile_url": {"type": "string", "maxLength": 255}
            }
        },
        "handler.profilePictureRequest": {
            "type": "object",
            "required": ["profile_picture_url"],
            "properties": {
                "profile_picture_url": {"type": "string", "maxLength": 255}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "nickname", "password"],
            "properties": {
                "bio": {"type": "string", "maxLength": 500},
                "email": {"type": "string", "maxLength": 255},
                "first_name": {"type": "string", "maxLength": 100},
                "github_profile_url": {"type": "string", "maxLength": 255},
                "last_name": {"type": "string", "maxLength": 100},
                "linkedin_profile_url": {"type": "string", "maxLength": 255},
                "nickname": {"type": "string"},
                "password": {"type": "string"},
                "profile_picture_url": {"type": "string", "maxLength": 255}
            }
        },
        "handler.registerResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "nickname": {"type": "string"},
                "role": {"type": "string"},
                "email_verified": {"type": "boolean"},
                "links": {"type": "array", "items": {"$ref": "#/definitions/domain.Link"}},
                "verification_email_sent": {"type": "boolean"}
            }
        },
        "handler.resendVerificationRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "handler.tokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "handler.updateUserRequest": {
            "type": "object",
            "properties": {
                "bio": {"type": "string", "maxLength": 500},
                "email": {"type": "string", "maxLength": 255},
                "first_name": {"type": "string", "maxLength": 100},
                "github_profile_url": {"type": "string", "maxLength": 255},
                "is_professional": {"type": "boolean"},
                "last_name": {"type": "string", "maxLength": 100},
                "linkedin_profile_url": {"type": "string", "maxLength": 255},
                "nickname": {"type": "string"},
                "profile_picture_url": {"type": "string", "maxLength": 255},
                "role": {"type": "string", "enum": ["ANONYMOUS", "AUTHENTICATED", "MANAGER", "ADMIN"]}
            }
        },
        "handler.userListResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.userResponse"}},
                "links": {"type": "array", "items": {"$ref": "#/definitions/domain.Link"}},
                "page": {"type": "integer"},
                "size": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "nickname": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "bio": {"type": "string"},
                "profile_picture_url": {"type": "string"},
                "linkedin_profile_url": {"type": "string"},
                "github_profile_url": {"type": "string"},
                "role": {"type": "string"},
                "is_professional": {"type": "boolean"},
                "email_verified": {"type": "boolean"},
                "is_locked": {"type": "boolean"},
                "last_login_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "links": {"type": "array", "items": {"$ref": "#/definitions/domain.Link"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
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
	Title:            "User Accounts API",
	Description:      "Registration, login, email verification and user administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
