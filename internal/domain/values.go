package domain

// Restriction is a canonicalized dietary filter.
type Restriction string

const (
	RestrictionVegan      Restriction = "vegan"
	RestrictionVegetarian Restriction = "vegetarian"
	RestrictionGlutenFree Restriction = "glutenfree"
	RestrictionNone       Restriction = "none"
)

// Spoken returns the word used when the restriction is read back to the
// user. "glutenfree" is pronounced with the hyphen.
func (r Restriction) Spoken() string {
	if r == RestrictionGlutenFree {
		return "gluten-free"
	}
	return string(r)
}

// IconCodes returns the menu-item icon codes that satisfy this
// restriction. An empty set means no filtering.
func (r Restriction) IconCodes() []int {
	switch r {
	case RestrictionVegan:
		return []int{4}
	case RestrictionVegetarian:
		return []int{1, 4}
	case RestrictionGlutenFree:
		return []int{9}
	default:
		return nil
	}
}

// iconURLs maps a menu-item icon code to the image published for it by
// the upstream menu provider.
var iconURLs = map[int]string{
	1: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-c9d18b.png",
	3: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-43c4b7.png",
	4: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-668e3c.png",
	6: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-d58f59.png",
	7: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-inbalance.png",
	9: "http://legacy.cafebonappetit.com/assets/cor_icons/menu-item-type-ce9d00.png",
}

// IconURL returns the provider's icon image URL for a code, or "" when
// the code has no published icon.
func IconURL(code int) string {
	return iconURLs[code]
}

// Meals the backend knows menus for. Breakfast is recognized by the NLU
// but explicitly unsupported.
const (
	MealLunch  = "lunch"
	MealDinner = "dinner"
)

// ResolvedDate is a date slot normalized for both speech and retrieval.
type ResolvedDate struct {
	// DisplayDate is the human form spoken back to the user ("Today",
	// "Saturday March 14").
	DisplayDate string
	// RequestDateParam is the YYYY/MM/DD path segment for menu retrieval.
	RequestDateParam string
}

// Preference is the persisted user preference payload. It currently
// carries at most a dietary restriction.
type Preference struct {
	Restriction string `json:"restriction,omitempty"`
}
