// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 Binaek Sarkar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError is fatal at load time and never raised during evaluation.
type ConfigError struct{}

func (e ConfigError) Error() string { return "configuration error" }

func ErrConfig(format string, args ...any) error {
	return errors.Wrapf(ConfigError{}, format, args...)
}

// NotFoundError marks a value that is absent from the evaluation context.
// Operators convert it to a false outcome; extractors and action rendering
// surface it as a partial match.
type NotFoundError struct {
	// Segment is the path segment that failed to resolve
	Segment string
	// Path is the parent path the segment was resolved against
	Path string
}

func (e NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("value not found: %q", e.Segment)
	}
	return fmt.Sprintf("value not found: %q in %q", e.Segment, e.Path)
}

func ErrNotFound(segment, path string) error {
	return NotFoundError{Segment: segment, Path: path}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// AccessorError is an accessor template that could not be rendered,
// e.g. an absent sub-expression inside a mixed template.
type AccessorError struct{}

func (e AccessorError) Error() string { return "accessor evaluation failed" }

func ErrAccessor(format string, args ...any) error {
	return errors.Wrapf(AccessorError{}, format, args...)
}

// ExtractorError is a WITH-clause extractor that did not produce a value:
// the regex did not match, or a modifier could not coerce the capture.
type ExtractorError struct{}

func (e ExtractorError) Error() string { return "extractor failed" }

func ErrExtractor(format string, args ...any) error {
	return errors.Wrapf(ExtractorError{}, format, args...)
}

// CollectorError is a failure turning a raw source payload into an Event.
// The event is dropped; the error goes back to the transport.
type CollectorError struct{}

func (e CollectorError) Error() string { return "collector error" }

func ErrCollector(format string, args ...any) error {
	return errors.Wrapf(CollectorError{}, format, args...)
}

// TypeMismatchError is a value of the wrong kind for the requested coercion.
type TypeMismatchError struct{ got, expected string }

func (e TypeMismatchError) Error() string {
	return "invalid type: " + e.got + " -> expected: " + e.expected
}

func ErrTypeMismatch(got, expected string) error {
	return TypeMismatchError{got: got, expected: expected}
}
