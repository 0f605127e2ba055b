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

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title and Contents must not be empty
//   - Jurisdiction and PracticeArea paths must fit their taxonomy depth
//   - DecidedAt must not be in the future
//
// NOT validated (populated by the ingestion pipeline):
//   - SummaryVector / ContentVector (can be empty until embedding runs)
//   - ID (0 means "derive from content" at insertion time)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContents)
	}

	if err := ValidatePathDepth(doc.Jurisdiction, JurisdictionTaxonomy()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := ValidatePathDepth(doc.PracticeArea, PracticeAreaTaxonomy()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if !doc.DecidedAt.IsZero() && !IsValidTimestamp(doc.DecidedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidatePathDepth checks that a path does not exceed its taxonomy's depth.
func ValidatePathDepth(path HierarchyPath, tax Taxonomy) error {
	if path.Depth() > tax.MaxDepth() {
		return fmt.Errorf("%w: %q has depth %d, %s allows %d",
			ErrInvalidPathDepth, path.String(), path.Depth(), tax.Name, tax.MaxDepth())
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
