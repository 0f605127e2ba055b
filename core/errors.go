// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain errors
var (
	// ErrMalformedPath indicates a path string that cannot be parsed.
	ErrMalformedPath = errors.New("malformed hierarchy path")

	// ErrInvalidPathDepth indicates an explicit path deeper than its taxonomy.
	ErrInvalidPathDepth = errors.New("path deeper than taxonomy")

	// ErrBackendUnavailable indicates that every search stage failed.
	ErrBackendUnavailable = errors.New("similarity backend unavailable")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContents indicates the Contents field is empty.
	ErrEmptyContents = errors.New("contents cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
