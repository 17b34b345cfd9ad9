// Package api defines the license API request and response types, request validation,
// and the mapping of errors to HTTP error responses.
//
// Error responses have the form:
//
//	{"errors": "failed to verify license", "errorCode": 8001, "requestId": "..."}
//
// For validation errors (422) errors is a list of {field, message} objects.
package api
