// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreDimensionMismatch Code = "memory.store.dimension_mismatch"
	CodeStoreDatabaseFailure   Code = "memory.store.database_failure"
	CodeStoreInvalidInput      Code = "memory.store.invalid_input"
	CodeStoreNoteNotFound      Code = "memory.store.note.not_found"

	CodeIndexShapeMismatch     Code = "memory.index.shape_mismatch"
	CodeIndexDimensionMismatch Code = "memory.index.dimension_mismatch"
	CodeIndexPersistFailure    Code = "memory.index.persist_failure"
	CodeIndexArtifactCorrupt   Code = "memory.index.artifact_corrupt"

	CodeRetrieveDimensionMismatch Code = "memory.retrieve.dimension_mismatch"

	CodeEmbedEmptyInput        Code = "memory.embed.empty_input"
	CodeEmbedDimensionMismatch Code = "memory.embed.dimension_mismatch"
	CodeEmbedZeroVector        Code = "memory.embed.zero_vector"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeProviderRequestInvalid  Code = "provider.request.invalid"
	CodeProviderResponseInvalid Code = "provider.response.invalid"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldNoteID(value int64) Attr {
	return Field("note_id", value)
}

func FieldDimension(value int) Attr {
	return Field("dimension", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsDimensionMismatch reports whether err is any vector-length validation
// failure, regardless of which layer raised it.
func IsDimensionMismatch(err error) bool {
	return reason(CodeOf(err)) == "dimension_mismatch"
}

func IsShapeMismatch(err error) bool {
	return reason(CodeOf(err)) == "shape_mismatch"
}

func IsEmptyInput(err error) bool {
	return reason(CodeOf(err)) == "empty_input"
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value"
}

// IsStorageFailure reports whether err originated from the durable record
// store or the index artifact rather than from caller input.
func IsStorageFailure(err error) bool {
	switch reason(CodeOf(err)) {
	case "database_failure", "persist_failure", "artifact_corrupt":
		return true
	}
	return false
}

// reason extracts the final dotted segment of a code, which carries the
// failure classification.
func reason(code Code) string {
	s := string(code)
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func flatten(fields []Attr) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
