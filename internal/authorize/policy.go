// Package authorize centralizes the role rules of the service in a casbin
// enforcer: which roles may chat with which, and which roles may act on
// prescriptions.  Callers ask the Policy instead of comparing roles inline.
package authorize

import (
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	domain "github.com/iliyamo/telehealth-core/internal/model"
)

// Actions understood by the policy.
const (
	ActChat    = "chat"
	ActIssue   = "issue"
	ActResolve = "resolve"
)

// ObjPrescription is the object of prescription actions.
const ObjPrescription = "prescription"

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// defaultPolicies: doctors and community health workers talk to patients,
// patients talk to either; only doctors issue and only patients answer
// affordability.
var defaultPolicies = [][]string{
	{string(domain.RoleDoctor), string(domain.RolePatient), ActChat},
	{string(domain.RolePatient), string(domain.RoleDoctor), ActChat},
	{string(domain.RolePatient), string(domain.RoleCommunityHealthWorker), ActChat},
	{string(domain.RoleCommunityHealthWorker), string(domain.RolePatient), ActChat},
	{string(domain.RoleDoctor), ObjPrescription, ActIssue},
	{string(domain.RolePatient), ObjPrescription, ActResolve},
}

// Policy wraps an in-memory casbin enforcer loaded with the default rules.
// It is safe for concurrent use.
type Policy struct {
	e *casbin.SyncedEnforcer
}

// NewPolicy builds the enforcer.  The rules are static, so no adapter is
// attached and nothing is persisted.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("casbin seed %v: %w", p, err)
		}
	}
	return &Policy{e: e}, nil
}

// MustPolicy is NewPolicy for wiring code that cannot continue without it.
func MustPolicy() *Policy {
	p, err := NewPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

// Revoke withdraws one rule at runtime.  Revoking a rule that is not
// present is not an error.
func (p *Policy) Revoke(sub, obj, act string) error {
	_, err := p.e.RemovePolicy(sub, obj, act)
	return err
}

// CanChat reports whether an account with role from may select an account
// with role to as its chat peer.
func (p *Policy) CanChat(from, to domain.Role) bool {
	return p.allowed(string(from), string(to), ActChat)
}

// CanIssuePrescription reports whether role may write prescriptions.
func (p *Policy) CanIssuePrescription(role domain.Role) bool {
	return p.allowed(string(role), ObjPrescription, ActIssue)
}

// CanResolvePrescription reports whether role may answer affordability.
func (p *Policy) CanResolvePrescription(role domain.Role) bool {
	return p.allowed(string(role), ObjPrescription, ActResolve)
}

// allowed treats enforcement errors as a denial.
func (p *Policy) allowed(sub, obj, act string) bool {
	ok, err := p.e.Enforce(sub, obj, act)
	return err == nil && ok
}
