// Package docs registers the swagger document for the license API.
//
// Regenerate with swag init -g cmd/license-server/main.go -o internal/docs --outputTypes go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/.well-known/jwks.json": {
            "get": {
                "description": "Returns the public key used to sign licenses as a JWK set.",
                "tags": [
                    "Common"
                ],
                "summary": "Get JWK set",
                "responses": {
                    "200": {
                        "description": "JWK set",
                        "schema": {
                            "$ref": "#/definitions/handlers.JWKSResponse"
                        }
                    }
                }
            }
        },
        "/activate-license": {
            "post": {
                "description": "Verifies the license key with the marketplace and returns a signed license.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Licenses"
                ],
                "summary": "Activate a purchased license",
                "parameters": [
                    {
                        "description": "License key",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ActivationRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Signed license",
                        "schema": {
                            "$ref": "#/definitions/api.LicenseResponse"
                        }
                    },
                    "400": {
                        "description": "Malformed request, purchase not verified or unknown product",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "405": {
                        "description": "Method not allowed",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Request body failed validation",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Signing key not configured",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/activate-trial": {
            "post": {
                "description": "Returns a signed trial license that expires a fixed number of days after issue.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Licenses"
                ],
                "summary": "Issue a trial license",
                "parameters": [
                    {
                        "description": "Trial product",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/api.TrialRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Signed trial license",
                        "schema": {
                            "$ref": "#/definitions/api.LicenseResponse"
                        }
                    },
                    "400": {
                        "description": "Malformed request or unknown product",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "405": {
                        "description": "Method not allowed",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Request body failed validation",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Signing key not configured",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/docs/openapi.json": {
            "get": {
                "description": "Returns the swagger document describing this API",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Common"
                ],
                "summary": "Get the API document",
                "responses": {
                    "200": {
                        "description": "API document",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {}
                        }
                    }
                }
            }
        },
        "/health/live": {
            "get": {
                "description": "Check if the HTTP service is alive and responding.",
                "produces": [
                    "text/plain"
                ],
                "tags": [
                    "Common"
                ],
                "summary": "Health (liveness) Check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Checks if the service is ready to accept traffic (the license signing key is loaded)",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Common"
                ],
                "summary": "Readiness Check",
                "responses": {
                    "200": {
                        "description": "status ready",
                        "schema": {
                            "$ref": "#/definitions/handlers.ReadinessResponse"
                        }
                    },
                    "503": {
                        "description": "status not ready",
                        "schema": {
                            "$ref": "#/definitions/handlers.ReadinessResponse"
                        }
                    }
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the version and build information for the service",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Common"
                ],
                "summary": "Get version information",
                "responses": {
                    "200": {
                        "description": "Version information",
                        "schema": {
                            "$ref": "#/definitions/handlers.VersionResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "api.ActivationRequest": {
            "type": "object",
            "required": [
                "licenseKey"
            ],
            "properties": {
                "licenseKey": {
                    "type": "string",
                    "maxLength": 256,
                    "example": "A1B2C3D4-E5F60718-293A4B5C-6D7E8F90"
                },
                "productId": {
                    "type": "string",
                    "maxLength": 128,
                    "example": "pro"
                }
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "errorCode": {
                    "type": "integer",
                    "example": 8001
                },
                "errors": {
                    "type": "string",
                    "example": "failed to verify license"
                },
                "requestId": {
                    "type": "string",
                    "example": "host/abcdef-000001"
                }
            }
        },
        "api.LicenseResponse": {
            "type": "object",
            "properties": {
                "license": {
                    "$ref": "#/definitions/license.License"
                },
                "signedLicense": {
                    "type": "string",
                    "example": "v2.eyJpc1RyaWFsIjp0cnVlfQ.c2lnbmF0dXJl"
                }
            }
        },
        "api.TrialRequest": {
            "type": "object",
            "properties": {
                "productId": {
                    "type": "string",
                    "maxLength": 128,
                    "example": "pro"
                }
            }
        },
        "handlers.JWKSResponse": {
            "type": "object",
            "properties": {
                "keys": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {}
                    }
                }
            }
        },
        "handlers.ReadinessResponse": {
            "type": "object",
            "properties": {
                "algorithm": {
                    "type": "string",
                    "example": "RS256"
                },
                "kid": {
                    "type": "string"
                },
                "reason": {
                    "type": "string",
                    "example": "signing key not loaded"
                },
                "status": {
                    "type": "string",
                    "example": "ready"
                }
            }
        },
        "handlers.VersionResponse": {
            "type": "object",
            "properties": {
                "build_time": {
                    "type": "string",
                    "example": "2024-01-28T10:00:00Z"
                },
                "git_commit": {
                    "type": "string",
                    "example": "3f2a9c1"
                },
                "service": {
                    "type": "string",
                    "example": "license-server"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                }
            }
        },
        "license.License": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "string",
                    "example": "{\"isTrial\":false,\"licenseKey\":\"ABC-123\",\"v\":2}"
                },
                "isTrial": {
                    "type": "boolean",
                    "example": false
                },
                "sig": {
                    "type": "string",
                    "example": "c2lnbmF0dXJl"
                }
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
	Title:            "license-server",
	Description:      "license-server issues signed software licenses for marketplace purchases and trials.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
