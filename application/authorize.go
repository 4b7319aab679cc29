package application

import (
	"github.com/DevArqf/ChronoCord/domain/entities"
)

// Caller describes the invoking member as reported by the platform.
type Caller struct {
	UserID  string
	GuildID string
	RoleIDs []string
	// CanManage is the platform's elevated guild-management permission.
	CanManage bool
	// IsAdmin gates the configuration commands.
	IsAdmin bool
}

// Decision is a single policy's verdict. Defer passes evaluation to the next
// policy in the chain.
type Decision int

const (
	Defer Decision = iota
	Allow
	Deny
)

// Policy inspects the caller against the guild settings. settingsFound is
// false when the guild has no stored settings row.
type Policy func(c Caller, settings entities.GuildSettings, settingsFound bool) Decision

// Authorize evaluates policies top-down and returns the first non-Defer
// verdict. A chain that defers all the way through denies.
func Authorize(c Caller, settings entities.GuildSettings, settingsFound bool, policies []Policy) bool {
	for _, p := range policies {
		switch p(c, settings, settingsFound) {
		case Allow:
			return true
		case Deny:
			return false
		}
	}
	return false
}

// DeveloperBypass allows the configured developer account unconditionally.
func DeveloperBypass(devUserID string) Policy {
	return func(c Caller, _ entities.GuildSettings, _ bool) Decision {
		if devUserID != "" && c.UserID == devUserID {
			return Allow
		}
		return Defer
	}
}

// RequireElevated denies non-elevated callers when the guild has opted into
// requiring the management permission. Defers when the option is off.
func RequireElevated(c Caller, settings entities.GuildSettings, settingsFound bool) Decision {
	if !settingsFound || !settings.RequireManage {
		return Defer
	}
	if c.CanManage {
		return Allow
	}
	return Deny
}

// RoleMembership requires one of the configured roles when any are set.
// Defers when no roles are configured.
func RoleMembership(c Caller, settings entities.GuildSettings, settingsFound bool) Decision {
	if !settingsFound || len(settings.EventRoleIDs) == 0 {
		return Defer
	}
	for _, want := range settings.EventRoleIDs {
		for _, have := range c.RoleIDs {
			if want == have {
				return Allow
			}
		}
	}
	return Deny
}

// AllowAll terminates a chain permissively.
func AllowAll(Caller, entities.GuildSettings, bool) Decision {
	return Allow
}

// ElevatedOnly terminates a chain by requiring the management permission.
func ElevatedOnly(c Caller, _ entities.GuildSettings, _ bool) Decision {
	if c.CanManage {
		return Allow
	}
	return Deny
}

// CreatePolicies gates poll creation and listing: open to everyone unless the
// guild restricts it.
func CreatePolicies(devUserID string) []Policy {
	return []Policy{
		DeveloperBypass(devUserID),
		RequireElevated,
		RoleMembership,
		AllowAll,
	}
}

// EndPolicies gates poll teardown: restricted to elevated members unless the
// guild configured roles that may manage polls.
func EndPolicies(devUserID string) []Policy {
	return []Policy{
		DeveloperBypass(devUserID),
		RequireElevated,
		RoleMembership,
		ElevatedOnly,
	}
}
