// Package tokenizer implements the pipeline's first transformation:
// split a raw message line on commas. It does not trim whitespace or
// interpret fields; that is the Validator's job.
package tokenizer

import "strings"

// Split splits raw on commas into an ordered field list. An empty
// string yields an empty (non-nil) slice; the Validator treats that
// as a rejection.
func Split(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}
