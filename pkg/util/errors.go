// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for fabric planning failures
var (
	ErrInvalidTopology       = errors.New("invalid topology parameter")
	ErrAddressSpaceExhausted = errors.New("address space exhausted")
	ErrDuplicateSubnet       = errors.New("duplicate subnet assignment")
	ErrMissingLinkMapping    = errors.New("missing link mapping")
	ErrValidationFailed      = errors.New("validation failed")
)

// TopologyParameterError reports a fat-tree degree that cannot describe
// a valid fabric. Planning never starts when this is returned.
type TopologyParameterError struct {
	K      int
	Reason string
}

func (e *TopologyParameterError) Error() string {
	return fmt.Sprintf("invalid fat-tree degree k=%d: %s", e.K, e.Reason)
}

func (e *TopologyParameterError) Unwrap() error {
	return ErrInvalidTopology
}

// NewTopologyParameterError creates a topology parameter error
func NewTopologyParameterError(k int, reason string) *TopologyParameterError {
	return &TopologyParameterError{K: k, Reason: reason}
}

// AddressSpaceError reports an addressing-scheme octet overflow. Tier
// names the link tier whose numbering overflowed and Counter is the
// offending tier-specific counter value.
type AddressSpaceError struct {
	Tier    string
	Counter int
}

func (e *AddressSpaceError) Error() string {
	return fmt.Sprintf("address space exhausted on %s tier (counter %d)", e.Tier, e.Counter)
}

func (e *AddressSpaceError) Unwrap() error {
	return ErrAddressSpaceExhausted
}

// NewAddressSpaceError creates an address space exhaustion error
func NewAddressSpaceError(tier string, counter int) *AddressSpaceError {
	return &AddressSpaceError{Tier: tier, Counter: counter}
}

// DuplicateSubnetError reports two links being assigned the same /30
// block. This indicates an allocator defect, never a user error.
type DuplicateSubnetError struct {
	Subnet string
	First  string
	Second string
}

func (e *DuplicateSubnetError) Error() string {
	return fmt.Sprintf("subnet %s assigned to both %s and %s", e.Subnet, e.First, e.Second)
}

func (e *DuplicateSubnetError) Unwrap() error {
	return ErrDuplicateSubnet
}

// NewDuplicateSubnetError creates a duplicate subnet error
func NewDuplicateSubnetError(subnet, first, second string) *DuplicateSubnetError {
	return &DuplicateSubnetError{Subnet: subnet, First: first, Second: second}
}

// MissingLinkError reports a lookup of a link identity that the address
// allocator never produced. Key names the expected link.
type MissingLinkError struct {
	Key string
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("no address assignment for link %s", e.Key)
}

func (e *MissingLinkError) Unwrap() error {
	return ErrMissingLinkMapping
}

// NewMissingLinkError creates a missing link mapping error
func NewMissingLinkError(key string) *MissingLinkError {
	return &MissingLinkError{Key: key}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
