// Package supabase connects the service to a hosted Supabase project, which
// provides the Postgres data API (PostgREST) and auth (GoTrue).
package supabase

import (
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	supa "github.com/supabase-community/supabase-go"
)

// NewClient creates a Supabase client authenticated with the given API key.
// Use the service role key so row-level policies do not hide rows from the server.
func NewClient(url, key string) (*supa.Client, error) {
	client, err := supa.NewClient(url, key, &supa.ClientOptions{Schema: "public"})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}

// IsConflict reports whether a PostgREST error carries a unique or exclusion violation.
// postgrest-go formats errors as "(<sqlstate>) <message>".
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "("+pgerrcode.UniqueViolation+")") ||
		strings.Contains(msg, "("+pgerrcode.ExclusionViolation+")")
}
