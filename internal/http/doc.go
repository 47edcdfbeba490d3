// Package http exposes the back-office over a JSON API. Handlers translate
// requests into application service calls and localize errors for the
// Brazilian Portuguese frontend; they hold no business rules of their own.
package http
