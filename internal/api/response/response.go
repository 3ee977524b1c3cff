// Package response writes the JSON bodies of the HTTP API.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/todopath/todopath/internal/domain"
)

// statusByCode maps domain error codes to HTTP statuses. Codes missing
// here are reported as 500.
var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeTaskNotFound:        http.StatusNotFound,
	domain.ErrCodeProjectNotFound:     http.StatusNotFound,
	domain.ErrCodeValidationFailed:    http.StatusBadRequest,
	domain.ErrCodeCycleDetected:       http.StatusBadRequest,
	domain.ErrCodePrecedenceViolation: http.StatusConflict,
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a domain error across the wire.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta computes the page count for total items.
func NewPaginationMeta(page, perPage, total int) PaginationMeta {
	m := PaginationMeta{Page: page, PerPage: perPage, Total: total}
	if perPage > 0 {
		m.TotalPages = (total + perPage - 1) / perPage
	}
	return m
}

// StatusFor returns the HTTP status reported for err. Errors that are not
// domain errors are internal.
func StatusFor(err error) int {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[domainErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("response: failed to encode body: %v", err)
	}
}

// OK writes data with status 200.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created writes data with status 201.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Paginated writes one page of data with its pagination metadata.
func Paginated(w http.ResponseWriter, data interface{}, page, perPage, total int) {
	OK(w, struct {
		Data       interface{}    `json:"data"`
		Pagination PaginationMeta `json:"pagination"`
	}{data, NewPaginationMeta(page, perPage, total)})
}

// Error writes err as an ErrorResponse. Non-domain errors become
// INTERNAL_ERROR.
func Error(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		domainErr = domain.NewInternalError(err)
	}
	JSON(w, StatusFor(domainErr), ErrorResponse{Error: ErrorBody{
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
		Context: domainErr.Context,
	}})
}
