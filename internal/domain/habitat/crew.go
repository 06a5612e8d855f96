package habitat

import "github.com/MRamiBalles/BioHome/server/internal/domain/grid"

// MaxCrew is the habitat's crew capacity.
const MaxCrew = 6

// Role is a crew specialisation. A habitat holds at most one of each.
type Role string

const (
	RoleEngineer  Role = "Engineer"
	RoleBotanist  Role = "Botanist"
	RoleDoctor    Role = "Doctor"
	RolePilot     Role = "Pilot"
	RoleScientist Role = "Scientist"
	RoleCommander Role = "Commander"
)

// Roles lists every role in roster order.
var Roles = []Role{RoleEngineer, RoleBotanist, RoleDoctor, RolePilot, RoleScientist, RoleCommander}

// Valid reports whether r is one of the six roles.
func (r Role) Valid() bool {
	_, ok := roleBonuses[r]
	return ok
}

// BonusKind names what a role bonus applies to.
type BonusKind string

const (
	BonusRepair      BonusKind = "repair"
	BonusHydroponics BonusKind = "hydroponics"
	BonusHealth      BonusKind = "health"
	BonusNavigation  BonusKind = "navigation"
	BonusExperiment  BonusKind = "experiment"
	BonusMorale      BonusKind = "morale"
)

// RoleBonus is the fixed modifier granted by a role.
type RoleBonus struct {
	Kind        BonusKind `json:"kind"`
	Value       float64   `json:"value"`
	Description string    `json:"description"`
}

var roleBonuses = map[Role]RoleBonus{
	RoleEngineer:  {BonusRepair, 0.3, "Reduces equipment failure rates by 30%"},
	RoleBotanist:  {BonusHydroponics, 0.4, "Increases hydroponic food production by 40%"},
	RoleDoctor:    {BonusHealth, 0.2, "Improves crew health recovery by 20%"},
	RolePilot:     {BonusNavigation, 0.1, "Reduces mission time by 10%"},
	RoleScientist: {BonusExperiment, 0.5, "Increases experiment completion rate by 50%"},
	RoleCommander: {BonusMorale, 0.3, "Improves crew morale and reduces stress"},
}

// BonusFor returns the bonus granted by a role.
func BonusFor(r Role) RoleBonus {
	return roleBonuses[r]
}

// CrewMember is one astronaut aboard the habitat.
type CrewMember struct {
	ID          string     `json:"id"`
	Role        Role       `json:"role"`
	Health      float64    `json:"health"` // 0-100
	Position    grid.Point `json:"position"`
	CurrentTask string     `json:"current_task,omitempty"`
	Bonus       RoleBonus  `json:"bonus"`
}

// NewCrewMember creates a healthy crew member at the origin.
func NewCrewMember(id string, role Role) *CrewMember {
	return &CrewMember{
		ID:     id,
		Role:   role,
		Health: 100,
		Bonus:  BonusFor(role),
	}
}

// Damage lowers the member's health, never below zero.
func (c *CrewMember) Damage(amount float64) {
	c.Health = Clamp(c.Health-amount, 0, 100)
}

// IsAlive reports whether the member still has health.
func (c *CrewMember) IsAlive() bool {
	return c.Health > 0
}
