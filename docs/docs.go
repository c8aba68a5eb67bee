// Package docs registers the OpenAPI document served at /api/v1/swagger.json
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/v1/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/api/v1/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Profile"],
                "summary": "Get profile",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Profile retrieved successfully", "schema": {"$ref": "#/definitions/dto.ProfileResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Profile"],
                "summary": "Ensure profile",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Profile ready", "schema": {"$ref": "#/definitions/dto.ProfileResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Profile"],
                "summary": "Update profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateMyProfileRequest"}}],
                "responses": {
                    "200": {"description": "Profile updated successfully", "schema": {"$ref": "#/definitions/dto.ProfileResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/brokers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "List brokers",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Brokers retrieved successfully", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.BrokerOption"}}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/admin/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "List users",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "page_size", "in": "query"},
                    {"enum": ["admin", "broker"], "type": "string", "name": "role", "in": "query"}
                ],
                "responses": {"200": {"description": "Users retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/api/v1/admin/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Get user",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "User retrieved successfully", "schema": {"$ref": "#/definitions/dto.ProfileResponse"}},
                    "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Update user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdminUpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "User updated successfully", "schema": {"$ref": "#/definitions/dto.ProfileResponse"}},
                    "409": {"description": "Broker code already assigned", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contracts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "List contracts",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "page_size", "in": "query"},
                    {"type": "string", "name": "broker_code", "in": "query"},
                    {"type": "string", "name": "active_on", "in": "query"}
                ],
                "responses": {"200": {"description": "Contracts retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Create contract",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateContractRequest"}}],
                "responses": {
                    "201": {"description": "Contract created successfully", "schema": {"$ref": "#/definitions/dto.ContractResponse"}},
                    "409": {"description": "Contract number already exists", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contracts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Get contract",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Contract retrieved successfully", "schema": {"$ref": "#/definitions/dto.ContractResponse"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Update contract",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateContractRequest"}}
                ],
                "responses": {"200": {"description": "Contract updated successfully", "schema": {"$ref": "#/definitions/dto.ContractResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Delete contract",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Contract deleted successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "409": {"description": "Contract has certificates", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/certificates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "List certificates",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "page_size", "in": "query"},
                    {"type": "string", "name": "contract_id", "in": "query"}
                ],
                "responses": {"200": {"description": "Certificates retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "Create certificate",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateCertificateRequest"}}],
                "responses": {
                    "201": {"description": "Certificate created successfully", "schema": {"$ref": "#/definitions/dto.CertificateResponse"}},
                    "400": {"description": "Validation error or unsupported currency", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "502": {"description": "Exchange rate service unavailable", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/certificates/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "Get certificate",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Certificate retrieved successfully", "schema": {"$ref": "#/definitions/dto.CertificateResponse"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "Update certificate",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateCertificateRequest"}}
                ],
                "responses": {"200": {"description": "Certificate updated successfully", "schema": {"$ref": "#/definitions/dto.CertificateResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "Delete certificate",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Certificate deleted successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/api/v1/admin/certificates/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Export certificates",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"type": "string", "name": "contract_id", "in": "query"},
                    {"type": "string", "name": "loading_from", "in": "query"},
                    {"type": "string", "name": "loading_to", "in": "query"}
                ],
                "responses": {"200": {"description": "Certificates workbook", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/currencies": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Currencies"],
                "summary": "List currencies",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Currencies retrieved successfully", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CurrencyItem"}}},
                    "502": {"description": "Exchange rate service unavailable", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/currencies/convert": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Currencies"],
                "summary": "Convert to EUR",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "amount", "in": "query", "required": true},
                    {"type": "string", "name": "currency", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "Conversion successful", "schema": {"$ref": "#/definitions/dto.ConvertCurrencyResponse"}}}
            }
        },
        "/api/pdf/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Certificates"],
                "summary": "Download certificate PDF",
                "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Certificate PDF", "schema": {"type": "file"}},
                    "400": {"description": "Invalid certificate ID", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Certificate not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "details": {}}
        },
        "dto.ProfileResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string"},
                "broker_code": {"type": "string"},
                "full_name": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.UpdateMyProfileRequest": {
            "type": "object",
            "properties": {"full_name": {"type": "string", "maxLength": 100}}
        },
        "dto.AdminUpdateProfileRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["admin", "broker"]},
                "broker_code": {"type": "string", "maxLength": 50},
                "full_name": {"type": "string", "maxLength": 100}
            }
        },
        "dto.BrokerOption": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "broker_code": {"type": "string"}, "full_name": {"type": "string"}}
        },
        "dto.CreateContractRequest": {
            "type": "object",
            "required": ["contract_number", "insured_name", "coverage_type", "start_date", "end_date", "broker_code", "sum_insured"],
            "properties": {
                "contract_number": {"type": "string", "maxLength": 50},
                "insured_name": {"type": "string", "maxLength": 200},
                "coverage_type": {"type": "string", "maxLength": 100},
                "start_date": {"type": "string", "example": "2026-01-01"},
                "end_date": {"type": "string", "example": "2026-12-31"},
                "broker_code": {"type": "string", "maxLength": 50},
                "sum_insured": {"type": "number"},
                "additional_si_percentage": {"type": "number"}
            }
        },
        "dto.UpdateContractRequest": {
            "type": "object",
            "properties": {
                "contract_number": {"type": "string", "maxLength": 50},
                "insured_name": {"type": "string", "maxLength": 200},
                "coverage_type": {"type": "string", "maxLength": 100},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "broker_code": {"type": "string", "maxLength": 50},
                "sum_insured": {"type": "number"},
                "additional_si_percentage": {"type": "number"}
            }
        },
        "dto.ContractResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "contract_number": {"type": "string"},
                "insured_name": {"type": "string"},
                "coverage_type": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "broker_code": {"type": "string"},
                "sum_insured": {"type": "number"},
                "additional_si_percentage": {"type": "number"},
                "max_insurable_eur": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.CreateCertificateRequest": {
            "type": "object",
            "required": ["contract_id", "insured_name", "cargo_description", "departure_country", "arrival_country", "transport_means", "loading_date", "currency", "value_local"],
            "properties": {
                "contract_id": {"type": "string"},
                "insured_name": {"type": "string", "maxLength": 200},
                "cargo_description": {"type": "string", "maxLength": 2000},
                "departure_country": {"type": "string", "maxLength": 100},
                "arrival_country": {"type": "string", "maxLength": 100},
                "transport_means": {"type": "string", "maxLength": 100},
                "loading_date": {"type": "string", "example": "2026-03-01"},
                "issue_date": {"type": "string", "example": "2026-03-01"},
                "currency": {"type": "string", "example": "USD"},
                "value_local": {"type": "number"}
            }
        },
        "dto.UpdateCertificateRequest": {
            "type": "object",
            "properties": {
                "contract_id": {"type": "string"},
                "insured_name": {"type": "string"},
                "cargo_description": {"type": "string"},
                "departure_country": {"type": "string"},
                "arrival_country": {"type": "string"},
                "transport_means": {"type": "string"},
                "loading_date": {"type": "string"},
                "issue_date": {"type": "string"},
                "currency": {"type": "string"},
                "value_local": {"type": "number"}
            }
        },
        "dto.CertificateResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "certificate_number": {"type": "string", "example": "CERT-2026-0001"},
                "contract_id": {"type": "string"},
                "contract_number": {"type": "string"},
                "insured_name": {"type": "string"},
                "cargo_description": {"type": "string"},
                "departure_country": {"type": "string"},
                "arrival_country": {"type": "string"},
                "transport_means": {"type": "string"},
                "loading_date": {"type": "string"},
                "issue_date": {"type": "string"},
                "currency": {"type": "string"},
                "value_local": {"type": "number"},
                "value_euro": {"type": "number"},
                "exchange_rate": {"type": "number"},
                "created_by": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.CurrencyItem": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "name": {"type": "string"}}
        },
        "dto.ConvertCurrencyResponse": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "amount": {"type": "number"},
                "value_euro": {"type": "number"},
                "exchange_rate": {"type": "number"},
                "rate_date": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cargo Certificates API",
	Description:      "Issue and manage cargo insurance certificates under broker contracts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
