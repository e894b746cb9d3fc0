package policy

// Claims is the closed set of facts about the current session's user,
// derived fresh from persisted account state on every request. It is a
// typed struct rather than a name→string map so a misspelled claim cannot
// silently evaluate to "absent" and defeat a policy.
type Claims struct {
	// UserID is the resolved session owner. Empty means unauthenticated;
	// policies over an empty-UserID Claims value are never evaluated by
	// the engine, which fails earlier with an unauthenticated error.
	UserID        string
	IsBanned      bool
	IsModerator   bool
	IsAdmin       bool
	EmailVerified bool
}

// Policy is a named boolean predicate over a [Claims] value.
type Policy struct {
	Name  string
	Allow func(Claims) bool
}

// Built-in policy names, matching the policy table of the original portal.
const (
	AuthenticatedUsersOnly = "AuthenticatedUsersOnly"
	EmailVerifiedOnly      = "EmailVerifiedOnly"
	IsNotBanned            = "IsNotBanned"
	ModeratorOnly          = "ModeratorOnly"
	AdminOnly              = "AdminOnly"
)

// BuiltinPolicies returns the five standard policies.
func BuiltinPolicies() []Policy {
	return []Policy{
		{Name: AuthenticatedUsersOnly, Allow: func(c Claims) bool { return c.UserID != "" }},
		{Name: EmailVerifiedOnly, Allow: func(c Claims) bool { return c.EmailVerified }},
		{Name: IsNotBanned, Allow: func(c Claims) bool { return !c.IsBanned }},
		{Name: ModeratorOnly, Allow: func(c Claims) bool { return c.IsModerator }},
		{Name: AdminOnly, Allow: func(c Claims) bool { return c.IsAdmin }},
	}
}
