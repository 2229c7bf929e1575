package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sharing Love API",
        "description": "Board, session and upload API for the welfare center website",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "tags": [
        {"name": "Authentication", "description": "Admin session cookie"},
        {"name": "Posts", "description": "Notice, budget, resource and gallery boards"},
        {"name": "Upload", "description": "Image and document storage"},
        {"name": "Admin", "description": "Back-office exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate the admin",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session cookie set", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Error"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Clear the admin session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Success"}}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "Authenticated", "schema": {"$ref": "#/definitions/Session"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/Session"}}
                }
            }
        },
        "/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "List posts",
                "parameters": [
                    {"in": "query", "name": "boardType", "type": "string", "enum": ["NOTICE", "BUDGET", "RESOURCE", "GALLERY"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "year", "type": "integer"},
                    {"in": "query", "name": "budgetType", "type": "string", "enum": ["BUDGET", "SETTLEMENT"]},
                    {"in": "query", "name": "includeUnpublished", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostList"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "tags": ["Posts"],
                "summary": "Create post",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PostInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Post"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "tags": ["Posts"],
                "summary": "Get post and count the view",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Post"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "put": {
                "tags": ["Posts"],
                "summary": "Update post",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PostInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Post"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["Posts"],
                "summary": "Delete post",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Success"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Upload"],
                "summary": "Upload files",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "files[]", "type": "file", "required": true}],
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Rejected", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/admin/posts/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export a board as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "boardType", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "Success": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "username": {"type": "string"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "user": {
                    "type": "object",
                    "properties": {
                        "adminId": {"type": "string"},
                        "username": {"type": "string"}
                    }
                }
            }
        },
        "Attachment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "postId": {"type": "string"},
                "filenameOriginal": {"type": "string"},
                "fileUrl": {"type": "string"},
                "fileSize": {"type": "integer"},
                "isImage": {"type": "boolean"},
                "mimeType": {"type": "string"},
                "displayOrder": {"type": "integer"}
            }
        },
        "Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "boardType": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "isPublished": {"type": "boolean"},
                "views": {"type": "integer"},
                "isPinned": {"type": "boolean"},
                "year": {"type": "integer"},
                "budgetType": {"type": "string"},
                "thumbnailUrl": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"},
                "attachments": {"type": "array", "items": {"$ref": "#/definitions/Attachment"}}
            }
        },
        "PostInput": {
            "type": "object",
            "properties": {
                "boardType": {"type": "string"},
                "title": {"type": "string", "maxLength": 100},
                "content": {"type": "string"},
                "isPublished": {"type": "boolean"},
                "isPinned": {"type": "boolean"},
                "year": {"type": "integer"},
                "budgetType": {"type": "string"},
                "thumbnailUrl": {"type": "string"},
                "attachments": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "filenameOriginal": {"type": "string"},
                            "fileUrl": {"type": "string"},
                            "fileSize": {"type": "integer"},
                            "isImage": {"type": "boolean"},
                            "mimeType": {"type": "string"}
                        }
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "PostList": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "files": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "filename": {"type": "string"},
                            "url": {"type": "string"},
                            "size": {"type": "integer"},
                            "mimetype": {"type": "string"},
                            "isImage": {"type": "boolean"},
                            "thumbnailUrl": {"type": "string"}
                        }
                    }
                }
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
