// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"errors"
	"fmt"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// ValidationError records a request that failed a business validation rule.
type ValidationError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string
	Message    string
	Code       string
	Err        error `json:"err,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ServiceUnavailableError indicates the warehouse cannot currently serve the operation.
type ServiceUnavailableError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e ServiceUnavailableError) Error() string {
	return e.Message
}

func (e ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// GatewayTimeoutError indicates the warehouse did not answer within a bounded stage.
type GatewayTimeoutError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e GatewayTimeoutError) Error() string {
	return e.Message
}

func (e GatewayTimeoutError) Unwrap() error {
	return e.Err
}

// BadGatewayError indicates the warehouse rejected or dropped the connection.
type BadGatewayError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e BadGatewayError) Error() string {
	return e.Message
}

func (e BadGatewayError) Unwrap() error {
	return e.Err
}

// InternalServerError indicates an unexpected failure during an operation.
type InternalServerError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e InternalServerError) Error() string {
	return e.Message
}

func (e InternalServerError) Unwrap() error {
	return e.Err
}

// ResponseError is the error body returned to clients.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error returns the message of the ResponseError.
func (r ResponseError) Error() string {
	return r.Message
}

// ValidationKnownFieldsError records an error that occurred during a validation of known fields.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

func (r ValidationKnownFieldsError) Error() string {
	return r.Message
}

// FieldValidations is a map of known fields and their validation errors.
type FieldValidations map[string]string

// ValidationUnknownFieldsError records a request body carrying fields the endpoint does not accept.
type ValidationUnknownFieldsError struct {
	EntityType string        `json:"entityType,omitempty"`
	Title      string        `json:"title,omitempty"`
	Code       string        `json:"code,omitempty"`
	Message    string        `json:"message,omitempty"`
	Fields     UnknownFields `json:"fields,omitempty"`
}

func (r ValidationUnknownFieldsError) Error() string {
	return r.Message
}

// UnknownFields is a map of unknown fields and their values.
type UnknownFields map[string]any

// ValidateInternalError wraps err in an InternalServerError with a generic client message.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       constant.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBadRequestFieldsError returns the bad request error matching the offending fields.
// Unknown fields win over missing ones, and missing ones over invalid ones.
func ValidateBadRequestFieldsError(requiredFields, knownInvalidFields map[string]string, entityType string, unknownFields map[string]any) error {
	if len(unknownFields) == 0 && len(knownInvalidFields) == 0 && len(requiredFields) == 0 {
		return errors.New("expected knownInvalidFields, unknownFields and requiredFields to be non-empty")
	}

	if len(unknownFields) > 0 {
		return ValidationUnknownFieldsError{
			EntityType: entityType,
			Code:       constant.ErrUnexpectedFieldsInTheRequest.Error(),
			Title:      "Unexpected Fields in the Request",
			Message:    "The request body contains more fields than expected. The unexpected fields are listed in the fields object.",
			Fields:     unknownFields,
		}
	}

	if len(requiredFields) > 0 {
		return ValidationKnownFieldsError{
			EntityType: entityType,
			Code:       constant.ErrMissingFieldsInRequest.Error(),
			Title:      "Missing Fields in Request",
			Message:    "Your request is missing one or more required fields.",
			Fields:     requiredFields,
		}
	}

	return ValidationKnownFieldsError{
		EntityType: entityType,
		Code:       constant.ErrBadRequest.Error(),
		Title:      "Bad Request",
		Message:    "The server could not understand the request. Please check the listed fields and try again.",
		Fields:     knownInvalidFields,
	}
}

// ValidateBusinessError maps a sentinel from pkg/constant to the client facing error.
// Unmapped errors are returned unchanged.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, constant.ErrInvalidWarmCount):
		return ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidWarmCount.Error(),
			Title:      "Invalid Warm Count",
			Message:    fmt.Sprintf("The warm count must be between 0 and %v.", args...),
		}
	case errors.Is(err, constant.ErrCircuitBreakerNotCreated):
		return ValidationError{
			EntityType: entityType,
			Code:       constant.ErrCircuitBreakerNotCreated.Error(),
			Title:      "Circuit Breaker Not Created",
			Message:    "The circuit breaker does not exist until the warehouse configuration has been resolved.",
		}
	case errors.Is(err, constant.ErrConfiguration):
		return ServiceUnavailableError{
			EntityType: entityType,
			Code:       constant.ErrConfiguration.Error(),
			Title:      "Warehouse Not Configured",
			Message:    fmt.Sprintf("The warehouse configuration is invalid: %v", err),
			Err:        err,
		}
	case errors.Is(err, constant.ErrCircuitOpen):
		return ServiceUnavailableError{
			EntityType: entityType,
			Code:       constant.ErrCircuitOpen.Error(),
			Title:      "Circuit Breaker Open",
			Message:    "The warehouse circuit breaker is open after repeated failures. Please try again later.",
			Err:        err,
		}
	case errors.Is(err, constant.ErrPoolClosed):
		return ServiceUnavailableError{
			EntityType: entityType,
			Code:       constant.ErrPoolClosed.Error(),
			Title:      "Pool Closed",
			Message:    "The warehouse pool is shutting down.",
			Err:        err,
		}
	case errors.Is(err, constant.ErrAuthentication):
		return BadGatewayError{
			EntityType: entityType,
			Code:       constant.ErrAuthentication.Error(),
			Title:      "Warehouse Authentication Failed",
			Message:    "The warehouse rejected the configured credentials.",
			Err:        err,
		}
	case errors.Is(err, constant.ErrTransientNetwork):
		return BadGatewayError{
			EntityType: entityType,
			Code:       constant.ErrTransientNetwork.Error(),
			Title:      "Warehouse Unreachable",
			Message:    fmt.Sprintf("The warehouse connection failed: %v", err),
			Err:        err,
		}
	}

	for _, timeout := range timeoutErrors {
		if errors.Is(err, timeout) {
			return GatewayTimeoutError{
				EntityType: entityType,
				Code:       timeout.Error(),
				Title:      "Warehouse Timeout",
				Message:    fmt.Sprintf("The warehouse did not answer in time: %v", err),
				Err:        err,
			}
		}
	}

	return err
}

var timeoutErrors = []error{
	constant.ErrBudgetExceeded,
	constant.ErrAcquireTimeout,
	constant.ErrExecuteTimeout,
	constant.ErrInitTimeout,
}
