package domain

// Categories is the fixed set of category tags, in display order.
var Categories = []string{
	"smartphones",
	"laptops",
	"headphones",
	"sneakers",
	"furniture",
	"appliances",
	"watches",
	"fitness",
	"tablets",
	"cameras",
	"speakers",
	"clothing",
	"accessories",
	"automotive",
	"outdoor",
	"cookware",
	"beauty",
	"ereaders",
	"gaming",
}

var knownCategories = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsKnownCategory reports whether category belongs to the known set.
func IsKnownCategory(category string) bool {
	_, ok := knownCategories[category]
	return ok
}

// CategoryGroup is a coarse visual family used by the heuristic strategy.
type CategoryGroup string

const (
	GroupNone        CategoryGroup = ""
	GroupElectronics CategoryGroup = "electronics"
	GroupFashion     CategoryGroup = "fashion"
	GroupAppliance   CategoryGroup = "appliance"
)

var categoryGroups = map[string]CategoryGroup{
	"smartphones": GroupElectronics,
	"laptops":     GroupElectronics,
	"tablets":     GroupElectronics,
	"cameras":     GroupElectronics,
	"sneakers":    GroupFashion,
	"clothing":    GroupFashion,
	"accessories": GroupFashion,
	"watches":     GroupFashion,
	"appliances":  GroupAppliance,
	"cookware":    GroupAppliance,
}

// GroupOf returns the group a category belongs to, or GroupNone.
func GroupOf(category string) CategoryGroup {
	return categoryGroups[category]
}
