// Package api exposes the review service over HTTP. It parses and validates
// requests, calls the service with the caller's user ID and maps service
// errors to status codes without leaking internal details.
package api
