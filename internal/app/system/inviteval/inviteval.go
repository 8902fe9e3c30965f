// Package inviteval validates a batch of invitee emails against the current
// state of a renovation. It is pure: callers gather the owner's email, the
// current member emails, and the pending-invitation emails, and Validate
// reports every violation in the batch without touching storage.
package inviteval

import (
	"fmt"

	"github.com/dalemusser/renohub/internal/app/system/normalize"
)

// Code identifies a validation failure kind.
type Code string

const (
	CodeEmptyList     Code = "empty_list"
	CodeSelfInvite    Code = "self_invite"
	CodeDuplicate     Code = "duplicate"
	CodeAlreadyMember Code = "already_member"
	CodeAlreadyInvited Code = "already_invited"
)

// FieldError describes one violation for one submitted email. Email is empty
// for batch-level failures (empty list).
type FieldError struct {
	Email   string
	Code    Code
	Message string
}

// Input is everything Validate needs. Email comparison is case-insensitive;
// all fields may be passed in raw form.
type Input struct {
	Candidates    []string // emails as submitted, in order
	OwnerEmail    string   // the inviting owner's own email
	MemberEmails  []string // emails of current renovation members
	PendingEmails []string // emails holding a pending invitation for this renovation
}

// Validate checks the candidate batch and returns every violation found.
// A nil result means the batch is acceptable. The batch is all-or-nothing:
// any violation means no invitation in it should be created.
func Validate(in Input) []FieldError {
	var errs []FieldError

	if len(in.Candidates) == 0 {
		return []FieldError{{
			Code:    CodeEmptyList,
			Message: "you must add at least one invitee before sending invitations",
		}}
	}

	owner := normalize.Email(in.OwnerEmail)

	members := make(map[string]bool, len(in.MemberEmails))
	for _, e := range in.MemberEmails {
		members[normalize.Email(e)] = true
	}
	pending := make(map[string]bool, len(in.PendingEmails))
	for _, e := range in.PendingEmails {
		pending[normalize.Email(e)] = true
	}

	seen := make(map[string]bool, len(in.Candidates))
	dupReported := make(map[string]bool)

	for _, raw := range in.Candidates {
		email := normalize.Email(raw)

		if email == owner && owner != "" {
			errs = append(errs, FieldError{
				Email:   email,
				Code:    CodeSelfInvite,
				Message: "you cannot invite yourself",
			})
		}

		if seen[email] {
			if !dupReported[email] {
				dupReported[email] = true
				errs = append(errs, FieldError{
					Email:   email,
					Code:    CodeDuplicate,
					Message: fmt.Sprintf("%s has already been selected", email),
				})
			}
		}
		seen[email] = true

		if members[email] {
			errs = append(errs, FieldError{
				Email:   email,
				Code:    CodeAlreadyMember,
				Message: fmt.Sprintf("%s is already a member", email),
			})
		}

		if pending[email] {
			errs = append(errs, FieldError{
				Email:   email,
				Code:    CodeAlreadyInvited,
				Message: fmt.Sprintf("%s has already been invited", email),
			})
		}
	}

	return errs
}

// HasCode reports whether any error in errs carries the given code.
func HasCode(errs []FieldError, code Code) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}
