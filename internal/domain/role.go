package domain

type RoleKind string

const (
	RoleSyndicate  RoleKind = "syndicate"
	RoleDetective  RoleKind = "detective"
	RoleEyeWitness RoleKind = "eyeWitness"
	RoleBodyGuard  RoleKind = "bodyGuard"
	RoleBystander  RoleKind = "innocentBystander"
)

// RoleInfo is the static description shown to a player once.
type RoleInfo struct {
	Title        string   `json:"title"`
	Abilities    []string `json:"abilities"`
	WinCondition string   `json:"winCondition"`
}

var roleCatalog = map[RoleKind]RoleInfo{
	RoleSyndicate: {
		Title: "Syndicate",
		Abilities: []string{
			"You know who the other Syndicate members are.",
			"Each night the Syndicate agrees on one victim.",
		},
		WinCondition: "The Syndicate equals or outnumbers everyone else.",
	},
	RoleDetective: {
		Title: "Detective",
		Abilities: []string{
			"Each night, investigate one player and learn whether they belong to the Syndicate.",
		},
		WinCondition: "Every Syndicate member is eliminated.",
	},
	RoleEyeWitness: {
		Title: "Eye Witness",
		Abilities: []string{
			"You witnessed the first crime: at game start you learn one Syndicate member.",
		},
		WinCondition: "Every Syndicate member is eliminated.",
	},
	RoleBodyGuard: {
		Title: "Body Guard",
		Abilities: []string{
			"Each night, protect one player from the Syndicate.",
		},
		WinCondition: "Every Syndicate member is eliminated.",
	},
	RoleBystander: {
		Title: "Innocent Bystander",
		Abilities: []string{
			"No special ability. Expose the Syndicate through discussion and voting.",
		},
		WinCondition: "Every Syndicate member is eliminated.",
	},
}

// Describe returns the static catalog entry for a role.
func Describe(role RoleKind) RoleInfo {
	return roleCatalog[role]
}
