// Package docs registers the OpenAPI document served at /swagger/doc.json.
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
    "paths": {
        "/quotes": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotes"],
                "summary": "List quotes",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "pageSize", "in": "query"},
                    {"enum": ["DRAFT", "SENT", "ACCEPTED", "REJECTED", "EXPIRED"], "type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PaginatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotes"],
                "summary": "Create quote",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateQuoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.QuoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "No unused quote number", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotes/sync-from-quickbooks": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["QuickBooks"],
                "summary": "Pull estimates from QuickBooks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SyncFromQuickBooksResponse"}},
                    "401": {"description": "QuickBooks not connected or authorization expired", "schema": {"$ref": "#/definitions/domain.SyncFromQuickBooksResponse"}},
                    "502": {"description": "QuickBooks request failed", "schema": {"$ref": "#/definitions/domain.SyncFromQuickBooksResponse"}}
                }
            }
        },
        "/quotes/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotes"],
                "summary": "Get quote",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            },
            "patch": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotes"],
                "summary": "Update quote",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UpdateQuoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Quotes"],
                "summary": "Delete quote",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotes/{id}/push-to-quickbooks": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["QuickBooks"],
                "summary": "Push quote to QuickBooks",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PushQuoteResponse"}},
                    "401": {"description": "QuickBooks not connected or authorization expired", "schema": {"$ref": "#/definitions/domain.PushQuoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.PushQuoteResponse"}},
                    "502": {"description": "QuickBooks request failed", "schema": {"$ref": "#/definitions/domain.PushQuoteResponse"}}
                }
            }
        },
        "/quickbooks/status": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["QuickBooks"],
                "summary": "QuickBooks connection status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuickBooksStatusDTO"}}}
            }
        },
        "/quickbooks/connection": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["QuickBooks"],
                "summary": "Store QuickBooks tokens",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SaveQuickBooksConnectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuickBooksStatusDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/alerts": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "List alerts",
                "parameters": [{"type": "boolean", "default": false, "name": "includeDismissed", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.AlertDTO"}}}
                }
            }
        },
        "/alerts/{id}/dismiss": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Dismiss alert",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AlertDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "domain.QuoteItemInput": {
            "type": "object",
            "required": ["productName"],
            "properties": {
                "productId": {"type": "string"},
                "productName": {"type": "string", "maxLength": 300},
                "sku": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1},
                "unitPrice": {"type": "number", "minimum": 0}
            }
        },
        "domain.QuoteItemDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "sku": {"type": "string"},
                "quantity": {"type": "integer"},
                "unitPrice": {"type": "number"},
                "totalPrice": {"type": "number"}
            }
        },
        "domain.CreateQuoteRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["DRAFT", "SENT", "ACCEPTED", "REJECTED", "EXPIRED"]},
                "customerName": {"type": "string"},
                "customerEmail": {"type": "string"},
                "customerPhone": {"type": "string"},
                "customerAddress": {"type": "string"},
                "customerCity": {"type": "string"},
                "customerState": {"type": "string"},
                "customerZip": {"type": "string"},
                "customerCountry": {"type": "string"},
                "discountType": {"type": "string", "enum": ["percentage", "fixed"]},
                "discountValue": {"type": "number"},
                "validUntil": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"},
                "quoteItems": {"type": "array", "items": {"$ref": "#/definitions/domain.QuoteItemInput"}},
                "syncToQuickBooks": {"type": "boolean"}
            }
        },
        "domain.UpdateQuoteRequest": {
            "type": "object",
            "description": "Absent fields are unchanged; null clears a nullable field",
            "properties": {
                "status": {"type": "string", "enum": ["DRAFT", "SENT", "ACCEPTED", "REJECTED", "EXPIRED"]},
                "customerName": {"type": "string"},
                "customerEmail": {"type": "string"},
                "customerPhone": {"type": "string"},
                "customerAddress": {"type": "string"},
                "customerCity": {"type": "string"},
                "customerState": {"type": "string"},
                "customerZip": {"type": "string"},
                "customerCountry": {"type": "string"},
                "discountType": {"type": "string", "enum": ["percentage", "fixed"]},
                "discountValue": {"type": "number"},
                "validUntil": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"},
                "quoteItems": {"type": "array", "items": {"$ref": "#/definitions/domain.QuoteItemInput"}},
                "syncToQuickBooks": {"type": "boolean"}
            }
        },
        "domain.QuoteDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "quoteNumber": {"type": "string"},
                "status": {"type": "string"},
                "customerName": {"type": "string"},
                "customerEmail": {"type": "string"},
                "customerPhone": {"type": "string"},
                "customerAddress": {"type": "string"},
                "customerCity": {"type": "string"},
                "customerState": {"type": "string"},
                "customerZip": {"type": "string"},
                "customerCountry": {"type": "string"},
                "subtotal": {"type": "number"},
                "discountType": {"type": "string"},
                "discountValue": {"type": "number"},
                "discountAmount": {"type": "number"},
                "total": {"type": "number"},
                "validUntil": {"type": "string"},
                "notes": {"type": "string"},
                "quickbooksEstimateId": {"type": "string"},
                "quickbooksSyncedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "quoteItems": {"type": "array", "items": {"$ref": "#/definitions/domain.QuoteItemDTO"}}
            }
        },
        "domain.QuoteResponse": {
            "allOf": [
                {"$ref": "#/definitions/domain.QuoteDTO"},
                {"type": "object", "properties": {"warning": {"type": "string"}}}
            ]
        },
        "domain.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.QuoteDTO"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "domain.PushQuoteResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "quickbooksEstimateId": {"type": "string"},
                "quote": {"$ref": "#/definitions/domain.QuoteDTO"},
                "error": {"type": "string"}
            }
        },
        "domain.SyncFromQuickBooksResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "created": {"type": "integer"},
                "updated": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"}
            }
        },
        "domain.QuickBooksStatusDTO": {
            "type": "object",
            "properties": {
                "connected": {"type": "boolean"},
                "source": {"type": "string"},
                "realmId": {"type": "string"},
                "accessTokenExpiresAt": {"type": "string"},
                "reconnectRequired": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "domain.SaveQuickBooksConnectionRequest": {
            "type": "object",
            "required": ["realmId", "accessToken"],
            "properties": {
                "realmId": {"type": "string"},
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "accessTokenExpiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "domain.AlertDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "type": {"type": "string", "enum": ["QUOTE_EXPIRING", "QUOTE_EXPIRED"]},
                "quoteId": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "dismissed": {"type": "boolean"},
                "dismissedAt": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Quote API",
	Description:      "Quotes with line items, kept in sync with QuickBooks Online estimates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
