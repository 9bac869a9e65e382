package permission

import "github.com/jonwraymond/gamenetauth/auth"

// Dashboard resources.
const (
	ResourceDashboard    = "dashboard"
	ResourceGamenets     = "gamenets"
	ResourceUsers        = "users"
	ResourcePlans        = "plans"
	ResourceInvoices     = "invoices"
	ResourceTransactions = "transactions"
	ResourceWallet       = "wallet"
	ResourceSettings     = "settings"
)

// Actions.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources lists every dashboard resource.
var Resources = []string{
	ResourceDashboard,
	ResourceGamenets,
	ResourceUsers,
	ResourcePlans,
	ResourceInvoices,
	ResourceTransactions,
	ResourceWallet,
	ResourceSettings,
}

var roleDefaults = map[auth.UserType][]string{
	auth.UserTypeAdmin: {
		New(ResourceDashboard, Wildcard),
		New(ResourceGamenets, Wildcard),
		New(ResourceUsers, Wildcard),
		New(ResourcePlans, Wildcard),
		New(ResourceInvoices, Wildcard),
		New(ResourceTransactions, Wildcard),
		New(ResourceWallet, Wildcard),
		New(ResourceSettings, Wildcard),
	},
	auth.UserTypeGamenet: {
		New(ResourceDashboard, ActionRead),
		New(ResourceUsers, ActionRead),
		New(ResourceUsers, ActionCreate),
		New(ResourceUsers, ActionUpdate),
		New(ResourcePlans, ActionRead),
		New(ResourceInvoices, ActionRead),
		New(ResourceTransactions, ActionRead),
		New(ResourceWallet, ActionRead),
		New(ResourceSettings, ActionRead),
		New(ResourceSettings, ActionUpdate),
	},
	auth.UserTypeUser: {
		New(ResourceDashboard, ActionRead),
		New(ResourceWallet, ActionRead),
		New(ResourceTransactions, ActionRead),
		New(ResourceSettings, ActionRead),
	},
}

// DefaultsFor returns the grants a role gets when the server sends no
// explicit list. Unknown roles get nothing.
func DefaultsFor(t auth.UserType) []string {
	return append([]string(nil), roleDefaults[t]...)
}

// Resolve returns the explicit grants when present, otherwise the role
// defaults.
func Resolve(t auth.UserType, explicit []string) Set {
	if len(explicit) > 0 {
		return NewSet(explicit...)
	}
	return NewSet(DefaultsFor(t)...)
}
