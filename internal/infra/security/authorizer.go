package security

import (
	"context"
	"fmt"

	"github.com/casbin/casbin"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/middleware"
	"cabinrent/internal/app/policies"
)

// RoleAnonymous is the subject used when no principal is attached.
const RoleAnonymous = "anonymous"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act
`

// DefaultPolicy grants the public read side and reservation requests to
// everybody, reservation handling to staff and everything to admins.
var DefaultPolicy = [][]string{
	{RoleAnonymous, "availability.*", middleware.ActionAsk},
	{RoleAnonymous, "pricing.*", middleware.ActionAsk},
	{RoleAnonymous, "cabins.list", middleware.ActionAsk},
	{RoleAnonymous, "cabins.get", middleware.ActionAsk},
	{RoleAnonymous, "reservations.create", middleware.ActionDispatch},
	{"staff", "reservations.*", middleware.ActionAsk},
	{"staff", "reservations.confirm", middleware.ActionDispatch},
	{"staff", "reservations.cancel", middleware.ActionDispatch},
	{"staff", "reservations.reschedule", middleware.ActionDispatch},
	{"admin", "*", middleware.ActionAsk},
	{"admin", "*", middleware.ActionDispatch},
}

var defaultGroups = [][]string{
	{"staff", RoleAnonymous},
	{"admin", "staff"},
}

// CasbinAuthorizer checks bus messages against an RBAC policy keyed by
// message key.
type CasbinAuthorizer struct {
	enforcer *casbin.Enforcer
}

func NewCasbinAuthorizer(policy [][]string) (*CasbinAuthorizer, error) {
	if policy == nil {
		policy = DefaultPolicy
	}
	e := casbin.NewEnforcer(casbin.NewModel(rbacModel))
	for _, rule := range policy {
		if len(rule) != 3 {
			return nil, fmt.Errorf("security: policy rule %v must have 3 fields", rule)
		}
		e.AddPolicy(rule[0], rule[1], rule[2])
	}
	for _, g := range defaultGroups {
		e.AddGroupingPolicy(g[0], g[1])
	}
	return &CasbinAuthorizer{enforcer: e}, nil
}

func (a *CasbinAuthorizer) Authorize(ctx context.Context, key, action string) error {
	p, authenticated := policies.PrincipalFromContext(ctx)
	subjects := []string{RoleAnonymous}
	if authenticated {
		subjects = append(subjects, p.Roles...)
	}
	for _, sub := range subjects {
		if a.enforcer.Enforce(sub, key, action) {
			return nil
		}
	}
	if !authenticated {
		return apperr.Unauthorized("authentication required")
	}
	return apperr.Forbidden("not allowed to " + action + " " + key)
}

var _ middleware.Authorizer = (*CasbinAuthorizer)(nil)
