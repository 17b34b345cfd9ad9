// Package server provides the HTTP server for the license API.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The license endpoints are mounted twice: at the root and under /.netlify/functions for
// clients of the earlier serverless deployment. /verify-license is an alias of /activate-license.
//
// middleware is in internal/server/middleware
package server
