// Package domain holds the tenancy request model, its validation and the
// error taxonomy shared by the pack builder and the HTTP layer.
// It has no transport or rendering concerns.
package domain
