package handlers

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/metakernel/internal/requestctx"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Wildcard matches any tenant or entity in a Rule.
const Wildcard = "*"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorizer decides whether a request may run a command on an entity.
type Authorizer interface {
	Authorize(ctx context.Context, info requestctx.Info, cmd types.CommandType, entity string) (Decision, error)
}

// Permission asks an Authorizer about every command and rejects denied
// ones.
type Permission struct {
	Authorizer Authorizer
}

func (Permission) Name() string { return NamePermission }
func (Permission) Order() int   { return 200 }

func (p Permission) Supports(*types.CommandContext) bool { return p.Authorizer != nil }

func (p Permission) Handle(ctx context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	info := requestctx.FromContext(ctx)
	d, err := p.Authorizer.Authorize(ctx, info, cc.CommandType(), cc.EntityName)
	if err != nil {
		return false, fmt.Errorf("authorizing %s %s: %w", cc.CommandType(), cc.EntityName, err)
	}
	if !d.Allowed {
		reason := d.Reason
		if reason == "" {
			reason = fmt.Sprintf("%s %s denied", cc.CommandType(), cc.EntityName)
		}
		cc.Reject(reason)
		return false, nil
	}
	return true, nil
}

// Rule allows or denies commands for a tenant and entity. Empty Commands
// matches every command.
type Rule struct {
	Tenant   string              `json:"tenant" yaml:"tenant"`
	Entity   string              `json:"entity" yaml:"entity"`
	Commands []types.CommandType `json:"commands,omitempty" yaml:"commands,omitempty"`
	Allow    bool                `json:"allow" yaml:"allow"`
}

func (r Rule) matches(tenant, entity string, cmd types.CommandType) bool {
	if r.Tenant != Wildcard && r.Tenant != tenant {
		return false
	}
	if r.Entity != Wildcard && r.Entity != entity {
		return false
	}
	return len(r.Commands) == 0 || slices.Contains(r.Commands, cmd)
}

// RuleAuthorizer applies the first matching rule, falling back to a
// default decision.
type RuleAuthorizer struct {
	mu           sync.RWMutex
	rules        []Rule
	defaultAllow bool
}

// NewRuleAuthorizer creates an authorizer with the given fallback.
func NewRuleAuthorizer(defaultAllow bool, rules ...Rule) *RuleAuthorizer {
	return &RuleAuthorizer{rules: slices.Clone(rules), defaultAllow: defaultAllow}
}

// Add appends a rule.
func (a *RuleAuthorizer) Add(r Rule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = append(a.rules, r)
}

// Authorize implements Authorizer.
func (a *RuleAuthorizer) Authorize(_ context.Context, info requestctx.Info, cmd types.CommandType, entity string) (Decision, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.rules {
		if !r.matches(info.TenantID, entity, cmd) {
			continue
		}
		if r.Allow {
			return Decision{Allowed: true}, nil
		}
		return Decision{Reason: fmt.Sprintf("tenant %q may not %s %s", info.TenantID, cmd, entity)}, nil
	}
	if a.defaultAllow {
		return Decision{Allowed: true}, nil
	}
	return Decision{Reason: fmt.Sprintf("no rule allows %s %s", cmd, entity)}, nil
}
