package permission

// NavItem is a navigation entry gated by a resource and action.
// An empty Resource means the entry is always visible.
type NavItem struct {
	Path     string
	Label    string
	Resource string
	Action   string
}

// FilterNav returns the items set can access, in their original order.
func FilterNav(set Set, items []NavItem) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if item.Resource == "" {
			out = append(out, item)
			continue
		}
		action := item.Action
		if action == "" {
			action = ActionRead
		}
		if set.CanAccess(item.Resource, action) {
			out = append(out, item)
		}
	}
	return out
}

// DashboardNav is the default sidebar.
var DashboardNav = []NavItem{
	{Path: "/dashboard", Label: "Dashboard", Resource: ResourceDashboard, Action: ActionRead},
	{Path: "/gamenets", Label: "Gamenets", Resource: ResourceGamenets, Action: ActionRead},
	{Path: "/users", Label: "Users", Resource: ResourceUsers, Action: ActionRead},
	{Path: "/plans", Label: "Plans", Resource: ResourcePlans, Action: ActionRead},
	{Path: "/invoices", Label: "Invoices", Resource: ResourceInvoices, Action: ActionRead},
	{Path: "/transactions", Label: "Transactions", Resource: ResourceTransactions, Action: ActionRead},
	{Path: "/wallet", Label: "Wallet", Resource: ResourceWallet, Action: ActionRead},
	{Path: "/settings", Label: "Settings", Resource: ResourceSettings, Action: ActionRead},
	{Path: "/profile", Label: "Profile"},
}
