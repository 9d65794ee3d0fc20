// Package sanitize cleans user-generated post text before it is stored.
// Uses bluemonday: titles and comments are reduced to plain text, while
// bodies and descriptions keep a safe subset of formatting HTML.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are built once; bluemonday policies are safe for concurrent use
// after construction.
var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	policyOnce   sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.RequireNoFollowOnLinks(true)
		ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return strictPolicy, ugcPolicy
}

// Text strips all markup and surrounding whitespace.
func Text(input string) string {
	if input == "" {
		return ""
	}
	strict, _ := policies()
	return strings.TrimSpace(strict.Sanitize(input))
}

// HTML removes dangerous elements (script, iframe, event handlers,
// javascript: URLs) while keeping safe formatting tags.
//
// This MUST be called on all user-provided rich text before storing it.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	_, ugc := policies()
	return strings.TrimSpace(ugc.Sanitize(input))
}

// TextPtr applies Text to an optional field, keeping nil as nil.
func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Text(*input)
	return &out
}

// HTMLPtr applies HTML to an optional field, keeping nil as nil.
func HTMLPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := HTML(*input)
	return &out
}
