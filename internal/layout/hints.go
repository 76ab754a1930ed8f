package layout

// fallbackZones are the well-known shared two-wheeler zone translations
// probed when a layout arrives without section hints. Kept deliberately
// small: only zones that appear at fixed grid positions across deployments
// belong here.
var fallbackZones = []SectionHint{
	{SectionName: "MC", Mode: ModeCapacityOnly, GridX: 8, GridY: 248},
	{SectionName: "BC", Mode: ModeCapacityOnly, GridX: 148, GridY: 248},
}
