// Package access holds the decision engine for note operations: a
// declarative policy table and the ownership guard that consults it.
package access

import (
	"net/http"

	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/note"
)

// Operation is a resource-targeted note operation.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// DenyReason classifies a DENY decision. Reasons map 1:1 to HTTP statuses at
// the boundary; internal detail never leaves with them.
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonUnauthenticated
	ReasonForbidden
	ReasonNotFound
)

func (r DenyReason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	case ReasonNotFound:
		return "not found"
	}
	return ""
}

// Status returns the HTTP status for the reason.
func (r DenyReason) Status() int {
	switch r {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonForbidden:
		return http.StatusForbidden
	case ReasonNotFound:
		return http.StatusNotFound
	}
	return http.StatusOK
}

// Rule is one row of the policy table. Ops nil means any operation. The
// first matching rule wins.
type Rule struct {
	Tier   identity.Tier
	Match  func(n *note.Note, callerID string) bool
	Ops    []Operation
	Allow  bool
	Reason DenyReason
}

func (r Rule) matches(tier identity.Tier, n *note.Note, callerID string, op Operation) bool {
	if tier != r.Tier {
		return false
	}
	if r.Match != nil && !r.Match(n, callerID) {
		return false
	}
	if r.Ops == nil {
		return true
	}
	for _, o := range r.Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Policy is an ordered rule set over an existing note. Absent notes are
// handled by the guard before the table is consulted.
type Policy struct {
	rules []Rule
}

// Evaluate walks the table in order and returns the first match. Requests
// matching no rule are denied.
func (p Policy) Evaluate(tier identity.Tier, n *note.Note, callerID string, op Operation) (bool, DenyReason) {
	for _, r := range p.rules {
		if r.matches(tier, n, callerID, op) {
			if r.Allow {
				return true, ReasonNone
			}
			return false, r.Reason
		}
	}
	return false, ReasonForbidden
}

func ownerless(n *note.Note, _ string) bool  { return n.Ownerless() }
func ownedByAny(n *note.Note, _ string) bool { return !n.Ownerless() }
func ownedByCaller(n *note.Note, callerID string) bool {
	return !n.Ownerless() && n.OwnerID == callerID
}
func ownedByOther(n *note.Note, callerID string) bool {
	return !n.Ownerless() && n.OwnerID != callerID
}

// DefaultPolicy is the rule set for note access.
//
// Ownerless notes have no identity to restrict edits to, so they are
// intentionally a shared-edit public bulletin: anyone who can reach the
// anonymous-note path may read, update or delete them. Owned notes are
// invisible to anonymous callers (404, existence is not leaked) and return
// 403 to authenticated non-owners, who already learned the note exists.
func DefaultPolicy() Policy {
	return Policy{rules: []Rule{
		// admins bypass ownership entirely
		{Tier: identity.TierAdmin, Allow: true},

		{Tier: identity.TierAnonymous, Match: ownerless, Ops: []Operation{OpRead}, Allow: true},
		{Tier: identity.TierAnonymous, Match: ownerless, Ops: []Operation{OpUpdate, OpDelete}, Allow: true},
		{Tier: identity.TierAnonymous, Match: ownedByAny, Reason: ReasonNotFound},

		{Tier: identity.TierUser, Match: ownedByCaller, Ops: []Operation{OpRead, OpUpdate, OpDelete}, Allow: true},
		{Tier: identity.TierUser, Match: ownedByOther, Reason: ReasonForbidden},
		{Tier: identity.TierUser, Match: ownerless, Ops: []Operation{OpRead}, Allow: true},
		// only admins or the anonymous path may mutate ownerless notes
		{Tier: identity.TierUser, Match: ownerless, Ops: []Operation{OpUpdate, OpDelete}, Reason: ReasonForbidden},
	}}
}
