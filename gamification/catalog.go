package gamification

// BadgeType selects which state counter a badge requirement is compared against.
type BadgeType string

const (
	BadgeTypeCheckins BadgeType = "checkins"
	BadgeTypeJournal  BadgeType = "journal"
	BadgeTypeStreak   BadgeType = "streak"
	BadgeTypePoints   BadgeType = "points"
)

// Badge is a catalog entry. Name, Description and Icon are display metadata.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Requirement int       `json:"requirement"`
	Type        BadgeType `json:"type"`
}

// LockedBadge is a badge not yet earned, with progress as a percentage in [0, 100].
type LockedBadge struct {
	Badge
	Progress float64 `json:"progress"`
}

// Catalog is an immutable, ordered list of badges. Order is the display order
// and the tie-break order when several badges unlock in one award.
type Catalog struct {
	badges []Badge
	index  map[string]int
}

// NewCatalog copies badges into a catalog. Later duplicates of an id are ignored.
func NewCatalog(badges []Badge) *Catalog {
	c := &Catalog{
		badges: make([]Badge, 0, len(badges)),
		index:  make(map[string]int, len(badges)),
	}
	for _, b := range badges {
		if _, dup := c.index[b.ID]; dup || b.ID == "" {
			continue
		}
		c.index[b.ID] = len(c.badges)
		c.badges = append(c.badges, b)
	}
	return c
}

var defaultCatalog = NewCatalog([]Badge{
	{ID: "first_checkin", Name: "First Step", Description: "Complete your first mood check-in", Icon: "🌱", Requirement: 1, Type: BadgeTypeCheckins},
	{ID: "week_warrior", Name: "Week Warrior", Description: "7-day check-in streak", Icon: "🔥", Requirement: 7, Type: BadgeTypeStreak},
	{ID: "journal_starter", Name: "Journal Starter", Description: "Write your first journal entry", Icon: "📝", Requirement: 1, Type: BadgeTypeJournal},
	{ID: "century", Name: "Century Club", Description: "Earn 100 points", Icon: "💯", Requirement: 100, Type: BadgeTypePoints},
	{ID: "mindful_master", Name: "Mindful Master", Description: "30-day check-in streak", Icon: "🧘", Requirement: 30, Type: BadgeTypeStreak},
	{ID: "dedicated", Name: "Dedicated", Description: "Complete 50 mood check-ins", Icon: "⭐", Requirement: 50, Type: BadgeTypeCheckins},
	{ID: "journal_pro", Name: "Journal Pro", Description: "Write 10 journal entries", Icon: "✨", Requirement: 10, Type: BadgeTypeJournal},
	{ID: "superstar", Name: "Superstar", Description: "Earn 500 points", Icon: "🌟", Requirement: 500, Type: BadgeTypePoints},
})

// DefaultCatalog returns the built-in badge catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Badges returns a copy of the catalog entries in order.
func (c *Catalog) Badges() []Badge {
	out := make([]Badge, len(c.badges))
	copy(out, c.badges)
	return out
}

func (c *Catalog) Len() int {
	return len(c.badges)
}

// Lookup returns the badge with the given id.
func (c *Catalog) Lookup(id string) (Badge, bool) {
	i, ok := c.index[id]
	if !ok {
		return Badge{}, false
	}
	return c.badges[i], true
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}
