package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BloodLink API",
        "description": "Blood donation management platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Requests", "description": "Donation request lifecycle"},
        {"name": "Donations", "description": "Donation history ledger and reporting"},
        {"name": "Donors", "description": "Donor directory with eligibility"},
        {"name": "Notifications", "description": "Audience broadcasts and per-user feed"},
        {"name": "Exports", "description": "Rendered report downloads"},
        {"name": "Ops", "description": "Operational endpoints"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue a JWT",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List donation requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "bloodGroup", "in": "query", "type": "string"},
                    {"name": "hospitalId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status"}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Create donation request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/nearby": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests ordered by hospital proximity",
                "parameters": [
                    {"name": "lat", "in": "query", "required": true, "type": "number"},
                    {"name": "lng", "in": "query", "required": true, "type": "number"},
                    {"name": "radius", "in": "query", "type": "number"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing origin coordinates"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get donation request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Requests"],
                "summary": "Update donation request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRequestPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Transition not allowed"},
                    "409": {"description": "Concurrent update conflict"}
                }
            },
            "delete": {
                "tags": ["Requests"],
                "summary": "Delete donation request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/requests/{id}/volunteer": {
            "post": {
                "tags": ["Requests"],
                "summary": "Volunteer as a donor for a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/VolunteerPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Request not open for volunteering"}
                }
            }
        },
        "/donations": {
            "get": {
                "tags": ["Donations"],
                "summary": "List donation history records",
                "parameters": [
                    {"name": "donorId", "in": "query", "type": "string"},
                    {"name": "hospitalId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "donationType", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Donations"],
                "summary": "Record a donation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDonationPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donations/aggregate": {
            "get": {
                "tags": ["Donations"],
                "summary": "Aggregated donation history with joined relations and summary",
                "parameters": [
                    {"name": "donorId", "in": "query", "type": "string"},
                    {"name": "hospitalId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donations/{id}": {
            "get": {
                "tags": ["Donations"],
                "summary": "Get donation record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Donations"],
                "summary": "Update donation record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDonationPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Donations"],
                "summary": "Delete donation record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/donors": {
            "get": {
                "tags": ["Donors"],
                "summary": "List donors annotated with eligibility",
                "parameters": [
                    {"name": "onlyEligible", "in": "query", "type": "boolean"},
                    {"name": "bloodGroup", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{donorId}/eligibility": {
            "get": {
                "tags": ["Donors"],
                "summary": "Compute a donor's eligibility",
                "parameters": [
                    {"name": "donorId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/broadcast": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Broadcast to a resolved audience",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BroadcastRequest"}}
                ],
                "responses": {
                    "200": {"description": "Delivered synchronously", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Enqueued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Current user's notification feed",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/donations/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Render a donation history export",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "donorId", "in": "query", "type": "string"},
                    {"name": "hospitalId", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a rendered export via its signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/ops/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Runtime metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateRequestPayload": {
            "type": "object",
            "properties": {
                "hospitalId": {"type": "string"},
                "bloodGroup": {"type": "string"},
                "bloodUnitsCount": {"type": "integer"},
                "priority": {"type": "string"},
                "status": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["hospitalId", "bloodGroup", "bloodUnitsCount"]
        },
        "UpdateRequestPatch": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "bloodUnitsCount": {"type": "integer"},
                "priority": {"type": "string"},
                "closedReason": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "VolunteerPayload": {
            "type": "object",
            "properties": {
                "donorId": {"type": "string"}
            }
        },
        "CreateDonationPayload": {
            "type": "object",
            "properties": {
                "donorId": {"type": "string"},
                "hospitalId": {"type": "string"},
                "requestId": {"type": "string"},
                "reportId": {"type": "string"},
                "donationDate": {"type": "string"},
                "donatedUnits": {"type": "integer"},
                "donationType": {"type": "string"},
                "status": {"type": "string"},
                "remarks": {"type": "string"}
            },
            "required": ["donorId", "donationDate"]
        },
        "UpdateDonationPatch": {
            "type": "object",
            "properties": {
                "donationDate": {"type": "string"},
                "donatedUnits": {"type": "integer"},
                "donationType": {"type": "string"},
                "status": {"type": "string"},
                "remarks": {"type": "string"}
            }
        },
        "BroadcastRequest": {
            "type": "object",
            "properties": {
                "audience": {"type": "string", "description": "all, donors, eligible, or a user id"},
                "channel": {"type": "string", "enum": ["EMAIL", "SMS"]},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "async": {"type": "boolean"}
            },
            "required": ["audience", "title", "message"]
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
