// Package api translates HTTP requests into service calls and service
// results into JSON responses. Handlers resolve the caller from the request
// context, decode and validate input, and map errors to status codes through
// HandleAPIError so that internal error text never reaches clients.
package api
