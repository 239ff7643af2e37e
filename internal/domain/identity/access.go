package identity

// Role is a role name carried by a user
type Role string

// Roles known to the back office. Department roles keep their German names.
const (
	RoleSuperAdmin  Role = "super-admin"
	RoleUser        Role = "user"
	RoleWarehouse   Role = "Lager"
	RoleFinance     Role = "Finanzen"
	RoleHR          Role = "Personal"
	RolePurchasing  Role = "Einkauf"
	RoleSales       Role = "Verkauf"
	RoleProduction  Role = "Produktion"
	RoleQuality     Role = "Qualität"
	RoleMaintenance Role = "Instandhaltung"
	RoleLogistics   Role = "Logistik"
	RoleMarketing   Role = "Marketing"
	RoleIT          Role = "IT"
	RoleManagement  Role = "Geschäftsführung"
)

// Group bundles collections that belong to one department
type Group string

const (
	GroupFinance     Group = "finance"
	GroupWarehouse   Group = "warehouse"
	GroupSales       Group = "sales"
	GroupHR          Group = "hr"
	GroupPurchasing  Group = "purchasing"
	GroupProduction  Group = "production"
	GroupQuality     Group = "quality"
	GroupMaintenance Group = "maintenance"
	GroupLogistics   Group = "logistics"
	GroupMarketing   Group = "marketing"
	GroupIT          Group = "it"
	GroupManagement  Group = "management"
)

var allGroups = []Group{
	GroupFinance, GroupWarehouse, GroupSales, GroupHR, GroupPurchasing, GroupProduction,
	GroupQuality, GroupMaintenance, GroupLogistics, GroupMarketing, GroupIT, GroupManagement,
}

var roleGroups = []struct {
	role  Role
	group Group
}{
	{RoleFinance, GroupFinance},
	{RoleWarehouse, GroupWarehouse},
	{RoleSales, GroupSales},
	{RoleHR, GroupHR},
	{RolePurchasing, GroupPurchasing},
	{RoleProduction, GroupProduction},
	{RoleQuality, GroupQuality},
	{RoleMaintenance, GroupMaintenance},
	{RoleLogistics, GroupLogistics},
	{RoleMarketing, GroupMarketing},
	{RoleIT, GroupIT},
	{RoleManagement, GroupManagement},
}

// Collection slugs
const (
	CollectionProducts        = "products"
	CollectionInventory       = "inventory"
	CollectionWarehouses      = "warehouses"
	CollectionOrders          = "orders"
	CollectionCustomers       = "customers"
	CollectionSuppliers       = "suppliers"
	CollectionPurchases       = "purchases"
	CollectionShippingMethods = "shipping-methods"
	CollectionTaxRates        = "tax-rates"
	CollectionOutbox          = "outbox"
)

var collectionGroups = map[string]Group{
	"financial-management": GroupFinance,
	"revenue":              GroupFinance,
	"invoices":             GroupFinance,
	"payments":             GroupFinance,
	"reporting-categories": GroupFinance,
	CollectionTaxRates:     GroupFinance,

	CollectionInventory:  GroupWarehouse,
	CollectionWarehouses: GroupWarehouse,
	CollectionProducts:   GroupWarehouse,

	CollectionOrders:          GroupSales,
	CollectionCustomers:       GroupSales,
	CollectionShippingMethods: GroupSales,

	CollectionSuppliers: GroupPurchasing,
	CollectionPurchases: GroupPurchasing,

	"documents":    GroupManagement,
	"reports":      GroupManagement,
	"audit-logs":   GroupManagement,
	"integrations": GroupManagement,

	CollectionOutbox: GroupIT,
}

// Groups returns the groups the user may work in
func Groups(u *User) []Group {
	if u == nil {
		return nil
	}
	if u.HasRole(RoleSuperAdmin) {
		return append([]Group(nil), allGroups...)
	}
	var out []Group
	for _, rg := range roleGroups {
		if u.HasRole(rg.role) {
			out = append(out, rg.group)
		}
	}
	return out
}

// CollectionGroup returns the group owning a collection, ok=false when ungrouped
func CollectionGroup(slug string) (Group, bool) {
	g, ok := collectionGroups[slug]
	return g, ok
}

// CanAccessCollection decides collection level access. Anonymous users are
// denied, super admins pass, ungrouped collections are open to every user.
func CanAccessCollection(u *User, slug string) bool {
	if u == nil {
		return false
	}
	if u.HasRole(RoleSuperAdmin) {
		return true
	}
	group, ok := CollectionGroup(slug)
	if !ok {
		return true
	}
	for _, g := range Groups(u) {
		if g == group {
			return true
		}
	}
	return false
}
