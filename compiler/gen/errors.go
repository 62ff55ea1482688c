package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds of a generation run.
var (
	// ErrMissingSkeletonTemplate indicates a skeleton required by an enabled role is absent.
	ErrMissingSkeletonTemplate = errors.New("layergen: missing skeleton template")
	// ErrUnsupportedSourceType indicates a declared source type without a fragment rule.
	ErrUnsupportedSourceType = errors.New("layergen: unsupported source type")
	// ErrInvalidDescriptorKind indicates a descriptor kind outside the known set.
	ErrInvalidDescriptorKind = errors.New("layergen: invalid descriptor kind")
	// ErrMissingRequiredSetting indicates a required run setting is absent.
	ErrMissingRequiredSetting = errors.New("layergen: missing required setting")
	// ErrIncompleteGroup indicates a consolidation group was left unfinalized.
	ErrIncompleteGroup = errors.New("layergen: incomplete consolidation group")
	// ErrGenerationFailed indicates a rendering or write failure.
	ErrGenerationFailed = errors.New("layergen: code generation failed")
)

// TemplateError reports a skeleton that could not be loaded.
type TemplateError struct {
	Role    Role
	Dialect string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	var b strings.Builder
	b.WriteString("layergen: missing skeleton template")
	if e.Role != 0 {
		fmt.Fprintf(&b, " for role %s", e.Role)
	}
	if e.Dialect != "" {
		fmt.Fprintf(&b, " (dialect %s)", e.Dialect)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for TemplateError.
func (e *TemplateError) Is(target error) bool { return target == ErrMissingSkeletonTemplate }

// SourceTypeError reports a column or parameter whose declared source type
// has no fragment rule in the active dialect.
type SourceTypeError struct {
	Descriptor string // descriptor id
	Target     string // target type full name
	Member     string // column or parameter name
	SourceType string // declared source-type string
	Dialect    string
	Role       Role
}

// Error implements the error interface.
func (e *SourceTypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layergen: unsupported source type %q", e.SourceType)
	if e.Member != "" {
		fmt.Fprintf(&b, " on %s", e.Member)
	}
	if e.Target != "" {
		fmt.Fprintf(&b, " of %s", e.Target)
	}
	if e.Descriptor != "" {
		fmt.Fprintf(&b, " (descriptor %s)", e.Descriptor)
	}
	if e.Role != 0 {
		fmt.Fprintf(&b, " while rendering %s", e.Role)
	}
	if e.Dialect != "" {
		fmt.Fprintf(&b, " for dialect %s", e.Dialect)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for SourceTypeError.
func (e *SourceTypeError) Is(target error) bool { return target == ErrUnsupportedSourceType }

// KindError reports a descriptor kind no branch of the pipeline handles.
type KindError struct {
	Descriptor string
	Kind       Kind
}

// Error implements the error interface.
func (e *KindError) Error() string {
	return fmt.Sprintf("layergen: invalid descriptor kind %d (descriptor %s)", int(e.Kind), e.Descriptor)
}

// Is reports whether the target matches the sentinel error for KindError.
func (e *KindError) Is(target error) bool { return target == ErrInvalidDescriptorKind }

// ConfigError represents a missing or invalid run setting.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("layergen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("layergen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrMissingRequiredSetting }

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GroupError reports a consolidation group whose artifacts were left
// accumulating because one of its descriptors failed.
type GroupError struct {
	Target  string   // target type full name of the group
	Failed  string   // id of the failing descriptor
	Pending []string // ids of the group's descriptors never processed
	Cause   error
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layergen: group %s left incomplete", e.Target)
	if e.Failed != "" {
		fmt.Fprintf(&b, " by descriptor %s", e.Failed)
	}
	if len(e.Pending) > 0 {
		fmt.Fprintf(&b, " (pending: %s)", strings.Join(e.Pending, ", "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GroupError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for GroupError.
func (e *GroupError) Is(target error) bool { return target == ErrIncompleteGroup }

// GenerationError represents a rendering or write error.
type GenerationError struct {
	Phase   string // "finalize", "format", "write", ...
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("layergen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsTemplateError reports whether the error is a TemplateError.
func IsTemplateError(err error) bool {
	var e *TemplateError
	return errors.As(err, &e)
}

// IsSourceTypeError reports whether the error is a SourceTypeError.
func IsSourceTypeError(err error) bool {
	var e *SourceTypeError
	return errors.As(err, &e)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsGroupError reports whether the error is a GroupError.
func IsGroupError(err error) bool {
	var e *GroupError
	return errors.As(err, &e)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
