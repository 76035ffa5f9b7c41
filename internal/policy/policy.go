// Package policy holds the admit/deny decision applied to every joining
// member. The username is the only identity signal a user supplies that can
// be checked against the registry; display names are unverifiable and play no
// part in the decision.
package policy

import (
	"context"

	"github.com/mihajloslav/fnflx/internal/telegram"
)

type Outcome int

const (
	// Ignore means the user is never evaluated: bots, including the service
	// itself, are outside the policy entirely.
	Ignore Outcome = iota
	Admit
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Ignore:
		return "ignore"
	case Admit:
		return "admit"
	case Deny:
		return "deny"
	}
	return "unknown"
}

type DenyReason string

const (
	ReasonNoUsername    DenyReason = "no-username"
	ReasonNotRegistered DenyReason = "username-not-registered"
)

type Decision struct {
	Outcome Outcome
	Reason  DenyReason
}

// RegistryLookup reports whether a registered identity claims the username.
// Implementations must match case-insensitively.
type RegistryLookup func(ctx context.Context, username string) (bool, error)

// Decide evaluates a joining user against the registry.
func Decide(ctx context.Context, user telegram.User, lookup RegistryLookup) (Decision, error) {
	if user.IsBot {
		return Decision{Outcome: Ignore}, nil
	}
	if user.Username == "" {
		return Decision{Outcome: Deny, Reason: ReasonNoUsername}, nil
	}
	registered, err := lookup(ctx, user.Username)
	if err != nil {
		return Decision{}, err
	}
	if !registered {
		return Decision{Outcome: Deny, Reason: ReasonNotRegistered}, nil
	}
	return Decision{Outcome: Admit}, nil
}
