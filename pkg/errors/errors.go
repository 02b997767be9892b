package errors

import (
	"fmt"
)

// MetadataNotFoundError indicates the connector descriptor file is absent.
type MetadataNotFoundError struct {
	Path string
	Err  error
}

// NewMetadataNotFoundError constructs a MetadataNotFoundError.
func NewMetadataNotFoundError(path string, err error) error {
	return &MetadataNotFoundError{Path: path, Err: err}
}

func (e *MetadataNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("metadata not found: %s", e.Path)
}

// Unwrap exposes the underlying error.
func (e *MetadataNotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MetadataParseError indicates a malformed descriptor document.
type MetadataParseError struct {
	Path    string
	Message string
	Err     error
}

// NewMetadataParseError constructs a MetadataParseError.
func NewMetadataParseError(path, message string, err error) error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &MetadataParseError{Path: path, Message: message, Err: err}
}

func (e *MetadataParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("metadata parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *MetadataParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MissingMetadataFieldError indicates a required descriptor field is absent.
type MissingMetadataFieldError struct {
	Field string
	Path  string
}

// NewMissingMetadataFieldError constructs a MissingMetadataFieldError.
func NewMissingMetadataFieldError(field, path string) error {
	return &MissingMetadataFieldError{Field: field, Path: path}
}

func (e *MissingMetadataFieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("metadata field %q missing in %s", e.Field, e.Path)
}

// ValidationError captures run configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SecretFetchError represents a failure retrieving connector secrets.
type SecretFetchError struct {
	Connector string
	Err       error
}

// NewSecretFetchError constructs a SecretFetchError.
func NewSecretFetchError(connector string, err error) error {
	return &SecretFetchError{Connector: connector, Err: err}
}

func (e *SecretFetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Connector != "" {
		return fmt.Sprintf("secret fetch failed for %s: %v", e.Connector, e.Err)
	}
	return fmt.Sprintf("secret fetch failed: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *SecretFetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCheckError represents a failed commit status update.
type StatusCheckError struct {
	Repository string
	Sha        string
	Err        error
}

// NewStatusCheckError constructs a StatusCheckError.
func NewStatusCheckError(repository, sha string, err error) error {
	return &StatusCheckError{Repository: repository, Sha: sha, Err: err}
}

func (e *StatusCheckError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("status check update failed for %s@%s: %v", e.Repository, e.Sha, e.Err)
}

// Unwrap exposes the underlying error.
func (e *StatusCheckError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotificationError represents a failed chat notification delivery.
type NotificationError struct {
	Channel string
	Err     error
}

// NewNotificationError constructs a NotificationError.
func NewNotificationError(channel string, err error) error {
	return &NotificationError{Channel: channel, Err: err}
}

func (e *NotificationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Channel != "" {
		return fmt.Sprintf("notification to %s failed: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("notification failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *NotificationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReportPersistError represents a failure persisting a run report.
type ReportPersistError struct {
	Key string
	Err error
}

// NewReportPersistError constructs a ReportPersistError.
func NewReportPersistError(key string, err error) error {
	return &ReportPersistError{Key: key, Err: err}
}

func (e *ReportPersistError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("report persist failed for %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("report persist failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ReportPersistError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
