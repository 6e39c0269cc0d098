package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tarsit Appointments API",
        "description": "Appointment booking, availability and business hours for Tarsit businesses.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [
        {"name": "Appointments", "description": "Booking lifecycle, availability and calendars"},
        {"name": "Business Hours", "description": "Weekly opening hours and appointment settings"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness probe with a metrics snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness probe (Postgres and Redis)",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unavailable"}}
            }
        },
        "/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/appointments": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateAppointmentRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Invalid payload or service",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "404": {
                        "description": "Business not found",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "409": {
                        "description": "Overlaps an existing appointment",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            },
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "businessId", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "string"},
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "enum": ["PENDING", "CONFIRMED", "COMPLETED", "CANCELED", "NO_SHOW"]
                    },
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/appointments/my": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List the caller's appointments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/appointments/business/{businessId}/slots": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Bookable start times for a day",
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "required": true,
                        "description": "YYYY-MM-DD"
                    },
                    {"name": "serviceId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SlotsEnvelope"}},
                    "400": {
                        "description": "Bad date or service",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "404": {
                        "description": "Business not found",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            }
        },
        "/api/v1/appointments/business/{businessId}/calendar": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Business calendar grouped by day",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {"name": "startDate", "in": "query", "type": "string", "required": true},
                    {"name": "endDate", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments/business/{businessId}/calendar/export": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Download the business calendar",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {"name": "startDate", "in": "query", "type": "string", "required": true},
                    {"name": "endDate", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Get an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Appointments"],
                "summary": "Update an appointment (legacy)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateAppointmentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Illegal transition",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Appointments"],
                "summary": "Delete an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments/{id}/confirm": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Confirm a pending appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Illegal transition",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {
                        "description": "Modified concurrently",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            }
        },
        "/api/v1/appointments/{id}/cancel": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Cancel an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {"$ref": "#/definitions/CancelAppointmentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Illegal transition",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/appointments/{id}/complete": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Complete a confirmed appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Illegal transition",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {
                        "description": "Modified concurrently",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            }
        },
        "/api/v1/appointments/{id}/no-show": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Mark an appointment as no-show",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {
                        "description": "Illegal transition",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    },
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {
                        "description": "Modified concurrently",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            }
        },
        "/api/v1/businesses/{businessId}/hours": {
            "get": {
                "tags": ["Business Hours"],
                "summary": "Get business hours",
                "parameters": [{"name": "businessId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {
                        "description": "Business not found",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            },
            "post": {
                "tags": ["Business Hours"],
                "summary": "Replace the weekly hours",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SetBusinessHoursRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid hours", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/businesses/{businessId}/hours/initialize": {
            "post": {
                "tags": ["Business Hours"],
                "summary": "Insert the default week where no hours exist",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "businessId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/businesses/{businessId}/hours/{dayOfWeek}": {
            "put": {
                "tags": ["Business Hours"],
                "summary": "Upsert hours for one weekday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {
                        "name": "dayOfWeek",
                        "in": "path",
                        "type": "integer",
                        "required": true,
                        "minimum": 0,
                        "maximum": 6
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateDayHoursRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid hours", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/businesses/{businessId}/appointment-settings": {
            "get": {
                "tags": ["Business Hours"],
                "summary": "Get appointment settings",
                "parameters": [{"name": "businessId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {
                        "description": "Business not found",
                        "schema": {"$ref": "#/definitions/ResponseEnvelope"}
                    }
                }
            },
            "put": {
                "tags": ["Business Hours"],
                "summary": "Update appointment settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "businessId", "in": "path", "type": "string", "required": true},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateAppointmentSettingsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateAppointmentRequest": {
            "type": "object",
            "required": ["businessId", "date"],
            "properties": {
                "businessId": {"type": "string"},
                "serviceId": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer", "minimum": 5, "maximum": 480},
                "notes": {"type": "string"}
            }
        },
        "UpdateAppointmentRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["PENDING", "CONFIRMED", "COMPLETED", "CANCELED", "NO_SHOW"]},
                "date": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer"},
                "notes": {"type": "string"},
                "serviceId": {"type": "string"},
                "cancelReason": {"type": "string"}
            }
        },
        "CancelAppointmentRequest": {"type": "object", "properties": {"reason": {"type": "string"}}},
        "BusinessHoursEntry": {
            "type": "object",
            "required": ["dayOfWeek"],
            "properties": {
                "dayOfWeek": {"type": "integer", "minimum": 0, "maximum": 6},
                "openTime": {"type": "string", "example": "09:00"},
                "closeTime": {"type": "string", "example": "17:00"},
                "isClosed": {"type": "boolean"}
            }
        },
        "SetBusinessHoursRequest": {
            "type": "object",
            "required": ["hours"],
            "properties": {"hours": {"type": "array", "items": {"$ref": "#/definitions/BusinessHoursEntry"}}}
        },
        "UpdateDayHoursRequest": {
            "type": "object",
            "properties": {
                "openTime": {"type": "string"},
                "closeTime": {"type": "string"},
                "isClosed": {"type": "boolean"}
            }
        },
        "UpdateAppointmentSettingsRequest": {
            "type": "object",
            "properties": {
                "appointmentsEnabled": {"type": "boolean"},
                "appointmentDuration": {"type": "integer", "minimum": 5, "maximum": 480},
                "appointmentBuffer": {"type": "integer", "minimum": 0, "maximum": 240},
                "advanceBookingDays": {"type": "integer", "minimum": 1, "maximum": 365}
            }
        },
        "AvailableSlots": {
            "type": "object",
            "properties": {
                "businessId": {"type": "string"},
                "date": {"type": "string"},
                "serviceId": {"type": "string"},
                "duration": {"type": "integer"},
                "buffer": {"type": "integer"},
                "slots": {"type": "array", "items": {"type": "string", "example": "09:00"}}
            }
        },
        "SlotsEnvelope": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/AvailableSlots"}, "meta": {"type": "object"}}
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}}
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
