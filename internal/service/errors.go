package service

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/safety"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// ValidationError carries field-level problems keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// SafetyAlertError blocks a prescription. It matches prescription.ErrSafetyAlert.
type SafetyAlertError struct {
	Alerts []safety.Alert
}

func (e *SafetyAlertError) Error() string {
	return fmt.Sprintf("%s (%d alerts)", prescription.ErrSafetyAlert, len(e.Alerts))
}

func (e *SafetyAlertError) Unwrap() error {
	return prescription.ErrSafetyAlert
}

// Caller identifies who is making a request.
type Caller struct {
	Subject   string
	Name      string
	Role      domain.Role
	IP        string
	RequestID string
}

func (c Caller) allow(roles ...domain.Role) error {
	if slices.Contains(roles, c.Role) {
		return nil
	}
	return ErrForbidden
}

type AuditEntry struct {
	Caller       Caller
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	StatusCode   int
	Changes      string
}
