package riot

import "go.uber.org/zap"

type Category string

const (
	CategorySkinLevel          Category = "skin_level"
	CategorySkinChroma         Category = "skin_chroma"
	CategoryAgent              Category = "agent"
	CategoryContractDefinition Category = "contract_definition"
	CategoryBuddy              Category = "buddy"
	CategorySpray              Category = "spray"
	CategoryFlex               Category = "flex"
	CategoryPlayerCard         Category = "player_card"
	CategoryPlayerTitle        Category = "player_title"
)

// Item type ids used by the entitlement service and by active expressions.
const (
	TypeSkinLevel          = "e7c63390-eda7-46e0-bb7a-a6abdacd2433"
	TypeSkinChroma         = "3ad1b2b2-acdb-4524-852f-954a76ddae0a"
	TypeAgent              = "01bb38e1-da47-4e6a-9b3d-945fe4655707"
	TypeContractDefinition = "f85cb6f7-33e5-4dc8-b609-ec7212301948"
	TypeBuddy              = "dd3bf334-87f3-40bd-b043-682a57a8dc3a"
	TypeSpray              = "d5f120f8-ff8c-4aac-92ea-f2b5acbe9475"
	TypeFlex               = "03a572de-4234-31ed-d344-ababa488f981"
	TypePlayerCard         = "3f296c07-64c3-494c-923b-fe692a4fa1bd"
	TypePlayerTitle        = "de7caa6b-adf7-4588-bbd1-143831e786c6"
)

// DefaultFlexID is the flex every account owns.
const DefaultFlexID = "af52b5a0-4a4c-03b2-c9d7-8187a08a2675"

var typeCategories = map[string]Category{
	TypeSkinLevel:          CategorySkinLevel,
	TypeSkinChroma:         CategorySkinChroma,
	TypeAgent:              CategoryAgent,
	TypeContractDefinition: CategoryContractDefinition,
	TypeBuddy:              CategoryBuddy,
	TypeSpray:              CategorySpray,
	TypeFlex:               CategoryFlex,
	TypePlayerCard:         CategoryPlayerCard,
	TypePlayerTitle:        CategoryPlayerTitle,
}

type Entitlement struct {
	TypeID     string `json:"TypeID"`
	ItemID     string `json:"ItemID"`
	InstanceID string `json:"InstanceID"`
}

// Entitlements groups owned items by category. Every known category has an
// entry, possibly empty.
type Entitlements map[Category][]Entitlement

// Owns reports whether itemID appears in category.
func (e Entitlements) Owns(category Category, itemID string) bool {
	for _, ent := range e[category] {
		if ent.ItemID == itemID {
			return true
		}
	}
	return false
}

type entitlementsByType struct {
	ItemTypeID   string        `json:"ItemTypeID"`
	Entitlements []Entitlement `json:"Entitlements"`
}

type entitlementsResponse struct {
	EntitlementsByTypes []entitlementsByType `json:"EntitlementsByTypes"`
}

func categorize(groups []entitlementsByType, log *zap.Logger) Entitlements {
	out := make(Entitlements, len(typeCategories))
	for _, c := range typeCategories {
		out[c] = []Entitlement{}
	}
	for _, g := range groups {
		c, ok := typeCategories[g.ItemTypeID]
		if !ok {
			log.Debug("dropping unknown entitlement type", zap.String("item_type_id", g.ItemTypeID), zap.Int("count", len(g.Entitlements)))
			continue
		}
		out[c] = append(out[c], g.Entitlements...)
	}
	if len(out[CategoryFlex]) == 0 {
		out[CategoryFlex] = []Entitlement{{ItemID: DefaultFlexID, TypeID: TypeFlex, InstanceID: DefaultFlexID}}
	}
	return out
}

// BuddyPool hands out concrete buddy instance ids. A buddy entitlement's
// ItemID is the buddy level id, so instances are pooled per level and taken
// in the order the service listed them. An instance is handed out once.
type BuddyPool struct {
	instances map[string][]string
}

func NewBuddyPool(e Entitlements) *BuddyPool {
	p := &BuddyPool{instances: map[string][]string{}}
	for _, ent := range e[CategoryBuddy] {
		if ent.InstanceID == "" {
			continue
		}
		p.instances[ent.ItemID] = append(p.instances[ent.ItemID], ent.InstanceID)
	}
	return p
}

// Take consumes one instance of the given buddy level.
func (p *BuddyPool) Take(levelID string) (string, bool) {
	queue := p.instances[levelID]
	if len(queue) == 0 {
		return "", false
	}
	p.instances[levelID] = queue[1:]
	return queue[0], true
}

// Remaining returns how many instances of levelID are still available.
func (p *BuddyPool) Remaining(levelID string) int {
	return len(p.instances[levelID])
}
