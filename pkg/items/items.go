// Package items is the static catalog mapping provider item keys to numeric
// item IDs. Ingestion resolves purchase-log keys through it; timing goals
// reference the numeric IDs.
//
// ID values follow the game's item constants:
// https://github.com/odota/dotaconstants/blob/master/build/items.json
package items

import (
	"sort"
	"strings"
)

// Item is one catalog entry.
type Item struct {
	ID          int    `json:"id"`
	Key         string `json:"name"`
	DisplayName string `json:"display_name"`
}

// LookupID resolves an item key from the provider's purchase log to its
// numeric ID.
func LookupID(key string) (int, bool) {
	id, ok := itemIDs[key]
	return id, ok
}

// KeyForID resolves a numeric ID back to an item key. Where aliases share an
// ID, the canonical key is returned.
func KeyForID(id int) (string, bool) {
	key, ok := idToKey[id]
	return key, ok
}

// All returns the full catalog sorted by display name.
func All() []Item {
	out := make([]Item, 0, len(itemIDs))
	for key, id := range itemIDs {
		out = append(out, Item{ID: id, Key: key, DisplayName: DisplayName(key)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DisplayName formats an item key for display, e.g. "blink" becomes
// "Blink Dagger". Unknown keys fall back to underscore-to-space with the
// first letter capitalized.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	result := strings.ReplaceAll(key, "_", " ")
	if len(result) > 0 {
		result = strings.ToUpper(result[:1]) + result[1:]
	}
	return result
}

var displayNames = map[string]string{
	"blink":               "Blink Dagger",
	"black_king_bar":      "Black King Bar",
	"battlefury":          "Battle Fury",
	"bfury":               "Battle Fury",
	"armlet":              "Armlet of Mordiggian",
	"mekansm":             "Mekansm",
	"force_staff":         "Force Staff",
	"hand_of_midas":       "Hand of Midas",
	"orchid":              "Orchid Malevolence",
	"bloodthorn":          "Bloodthorn",
	"radiance":            "Radiance",
	"diffusal_blade":      "Diffusal Blade",
	"desolator":           "Desolator",
	"invis_sword":         "Shadow Blade",
	"silver_edge":         "Silver Edge",
	"hurricane_pike":      "Hurricane Pike",
	"maelstrom":           "Maelstrom",
	"mjollnir":            "Mjollnir",
	"monkey_king_bar":     "Monkey King Bar",
	"greater_crit":        "Daedalus",
	"daedalus":            "Daedalus",
	"abyssal_blade":       "Abyssal Blade",
	"butterfly":           "Butterfly",
	"satanic":             "Satanic",
	"heart":               "Heart of Tarrasque",
	"assault":             "Assault Cuirass",
	"shivas_guard":        "Shiva's Guard",
	"lotus_orb":           "Lotus Orb",
	"pipe":                "Pipe of Insight",
	"crimson_guard":       "Crimson Guard",
	"blade_mail":          "Blade Mail",
	"vanguard":            "Vanguard",
	"hood_of_defiance":    "Hood of Defiance",
	"solar_crest":         "Solar Crest",
	"vladmir":             "Vladmir's Offering",
	"drums_of_endurance":  "Drum of Endurance",
	"ancient_janggo":      "Drum of Endurance",
	"urn_of_shadows":      "Urn of Shadows",
	"spirit_vessel":       "Spirit Vessel",
	"ethereal_blade":      "Ethereal Blade",
	"dagon":               "Dagon",
	"refresher":           "Refresher Orb",
	"octarine_core":       "Octarine Core",
	"ultimate_scepter":    "Aghanim's Scepter",
	"aghs":                "Aghanim's Scepter",
	"aghanims_shard":      "Aghanim's Shard",
	"aeon_disk":           "Aeon Disk",
	"linkens_sphere":      "Linken's Sphere",
	"sphere":              "Linken's Sphere",
	"manta":               "Manta Style",
	"sange_and_yasha":     "Sange and Yasha",
	"sny":                 "Sange and Yasha",
	"sange":               "Sange",
	"yasha":               "Yasha",
	"kaya":                "Kaya",
	"kaya_and_sange":      "Kaya and Sange",
	"yasha_and_kaya":      "Yasha and Kaya",
	"guardian_greaves":    "Guardian Greaves",
	"arcane_boots":        "Arcane Boots",
	"power_treads":        "Power Treads",
	"phase_boots":         "Phase Boots",
	"tranquil_boots":      "Tranquil Boots",
	"travel_boots":        "Boots of Travel",
	"travel_boots_2":      "Boots of Travel 2",
	"soul_ring":           "Soul Ring",
	"magic_wand":          "Magic Wand",
	"bracer":              "Bracer",
	"wraith_band":         "Wraith Band",
	"null_talisman":       "Null Talisman",
	"poor_mans_shield":    "Poor Man's Shield",
	"quelling_blade":      "Quelling Blade",
	"stout_shield":        "Stout Shield",
	"ring_of_basilius":    "Ring of Basilius",
	"headdress":           "Headdress",
	"buckler":             "Buckler",
	"pers":                "Perseverance",
	"infused_raindrop":    "Infused Raindrop",
	"glimmer_cape":        "Glimmer Cape",
	"ghost":               "Ghost Scepter",
	"rod_of_atos":         "Rod of Atos",
	"ultimate_orb":        "Ultimate Orb",
	"mystic_staff":        "Mystic Staff",
	"reaver":              "Reaver",
	"relic":               "Sacred Relic",
	"demon_edge":          "Demon Edge",
	"eagle":               "Eaglesong",
	"platemail":           "Platemail",
	"talisman_of_evasion": "Talisman of Evasion",
	"hyperstone":          "Hyperstone",
	"sheepstick":          "Scythe of Vyse",
	"cyclone":             "Eul's Scepter of Divinity",
	"skadi":               "Eye of Skadi",
	"bkb":                 "Black King Bar",
	"mkb":                 "Monkey King Bar",
	"ac":                  "Assault Cuirass",
}

var itemIDs = map[string]int{
	"blink":                 1,
	"blades_of_attack":      2,
	"broadsword":            3,
	"chainmail":             4,
	"claymore":              5,
	"helm_of_iron_will":     6,
	"javelin":               7,
	"mithril_hammer":        8,
	"platemail":             9,
	"quarterstaff":          10,
	"quelling_blade":        11,
	"ring_of_protection":    12,
	"gauntlets":             13,
	"slippers":              14,
	"mantle":                15,
	"branches":              16,
	"belt_of_strength":      17,
	"boots_of_elves":        18,
	"robe":                  19,
	"circlet":               20,
	"ogre_axe":              21,
	"blade_of_alacrity":     22,
	"staff_of_wizardry":     23,
	"ultimate_orb":          24,
	"gloves":                25,
	"lifesteal":             26,
	"ring_of_regen":         27,
	"sobi_mask":             28,
	"boots":                 29,
	"gem":                   30,
	"cloak":                 31,
	"talisman_of_evasion":   32,
	"cheese":                33,
	"magic_stick":           34,
	"magic_wand":            36,
	"ghost":                 37,
	"clarity":               38,
	"flask":                 39,
	"dust":                  40,
	"bottle":                41,
	"ward_observer":         42,
	"ward_sentry":           43,
	"tango":                 44,
	"courier":               45,
	"tpscroll":              46,
	"travel_boots":          48,
	"phase_boots":           50,
	"demon_edge":            51,
	"eagle":                 52,
	"reaver":                53,
	"relic":                 54,
	"hyperstone":            55,
	"ring_of_health":        56,
	"void_stone":            57,
	"mystic_staff":          58,
	"energy_booster":        59,
	"point_booster":         60,
	"vitality_booster":      61,
	"power_treads":          63,
	"hand_of_midas":         65,
	"oblivion_staff":        67,
	"pers":                  69,
	"poor_mans_shield":      71,
	"bracer":                73,
	"wraith_band":           75,
	"null_talisman":         77,
	"mekansm":               79,
	"vladmir":               81,
	"flying_courier":        84,
	"buckler":               86,
	"ring_of_basilius":      88,
	"pipe":                  90,
	"urn_of_shadows":        92,
	"headdress":             94,
	"sheepstick":            96,
	"orchid":                98,
	"cyclone":               100,
	"force_staff":           102,
	"dagon":                 104,
	"necronomicon":          106,
	"ultimate_scepter":      108,
	"refresher":             110,
	"assault":               112,
	"heart":                 114,
	"black_king_bar":        116,
	"aegis":                 117,
	"shivas_guard":          119,
	"bloodstone":            121,
	"sphere":                123,
	"vanguard":              125,
	"blade_mail":            127,
	"soul_booster":          129,
	"hood_of_defiance":      131,
	"rapier":                133,
	"monkey_king_bar":       135,
	"radiance":              137,
	"butterfly":             139,
	"greater_crit":          141,
	"basher":                143,
	"bfury":                 145,
	"manta":                 147,
	"lesser_crit":           149,
	"armlet":                151,
	"invis_sword":           152,
	"sange_and_yasha":       154,
	"satanic":               156,
	"mjollnir":              158,
	"skadi":                 160,
	"sange":                 162,
	"helm_of_the_dominator": 164,
	"maelstrom":             166,
	"desolator":             168,
	"yasha":                 170,
	"mask_of_madness":       172,
	"diffusal_blade":        174,
	"ethereal_blade":        176,
	"soul_ring":             178,
	"arcane_boots":          180,
	"orb_of_venom":          181,
	"stout_shield":          182,
	"ancient_janggo":        185,
	"medallion_of_courage":  187,
	"smoke_of_deceit":       188,
	"veil_of_discord":       190,
	"guardian_greaves":      192,
	"rod_of_atos":           194,
	"abyssal_blade":         196,
	"heavens_halberd":       198,
	"ring_of_aquila":        200,
	"tranquil_boots":        202,
	"shadow_amulet":         203,
	"glimmer_cape":          205,
	"travel_boots_2":        220,
	"silver_edge":           233,
	"solar_crest":           235,
	"octarine_core":         237,
	"lotus_orb":             239,
	"infused_raindrop":      265,
	"aeon_disk":             298,
	"kaya":                  300,
	"bloodthorn":            306,
	"hurricane_pike":        308,
	"spirit_vessel":         335,
	"kaya_and_sange":        345,
	"yasha_and_kaya":        347,
	"crimson_guard":         371,
	"aghanims_shard":        609,

	// Aliases the provider occasionally emits.
	"battlefury":         145,
	"bkb":                116,
	"linkens_sphere":     123,
	"daedalus":           141,
	"mkb":                135,
	"ac":                 112,
	"aghs":               108,
	"sny":                154,
	"drums_of_endurance": 185,
}

// aliases are excluded from the reverse map so IDs resolve to their
// canonical key.
var aliasKeys = map[string]bool{
	"battlefury":         true,
	"bkb":                true,
	"linkens_sphere":     true,
	"daedalus":           true,
	"mkb":                true,
	"ac":                 true,
	"aghs":               true,
	"sny":                true,
	"drums_of_endurance": true,
}

var idToKey = func() map[int]string {
	m := make(map[int]string, len(itemIDs))
	for key, id := range itemIDs {
		if aliasKeys[key] {
			continue
		}
		m[id] = key
	}
	return m
}()
