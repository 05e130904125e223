package progression

import "github.com/nutrio/nutrio/internal/domain"

// levelTable holds the display entry for levels 1..MaxDisplayLevel.
// Index 0 is level 1.
var levelTable = [MaxDisplayLevel]domain.LevelInfo{
	// ── Beginner (1-10) ─────────────────────────────────────────────
	{Level: 1, Title: "Nutrition Newbie", Emoji: "🌱", Tier: domain.TierBeginner},
	{Level: 2, Title: "Calorie Cadet", Emoji: "🎯", Tier: domain.TierBeginner},
	{Level: 3, Title: "Meal Apprentice", Emoji: "🍽️", Tier: domain.TierBeginner},
	{Level: 4, Title: "Food Explorer", Emoji: "🗺️", Tier: domain.TierBeginner},
	{Level: 5, Title: "Tracking Enthusiast", Emoji: "📊", Tier: domain.TierBeginner},
	{Level: 6, Title: "Portion Prodigy", Emoji: "⚖️", Tier: domain.TierBeginner},
	{Level: 7, Title: "Macro Novice", Emoji: "🧮", Tier: domain.TierBeginner},
	{Level: 8, Title: "Health Seeker", Emoji: "💚", Tier: domain.TierBeginner},
	{Level: 9, Title: "Balanced Beginner", Emoji: "⚖️", Tier: domain.TierBeginner},
	{Level: 10, Title: "Wellness Warrior", Emoji: "⚔️", Tier: domain.TierBeginner},

	// ── Intermediate (11-25) ────────────────────────────────────────
	{Level: 11, Title: "Nutrition Navigator", Emoji: "🧭", Tier: domain.TierIntermediate},
	{Level: 12, Title: "Calorie Commander", Emoji: "👑", Tier: domain.TierIntermediate},
	{Level: 13, Title: "Meal Maestro", Emoji: "🎼", Tier: domain.TierIntermediate},
	{Level: 14, Title: "Diet Disciple", Emoji: "🙏", Tier: domain.TierIntermediate},
	{Level: 15, Title: "Protein Paladin", Emoji: "🛡️", Tier: domain.TierIntermediate},
	{Level: 16, Title: "Macro Mechanic", Emoji: "🔧", Tier: domain.TierIntermediate},
	{Level: 17, Title: "Health Architect", Emoji: "🏗️", Tier: domain.TierIntermediate},
	{Level: 18, Title: "Balance Keeper", Emoji: "⚖️", Tier: domain.TierIntermediate},
	{Level: 19, Title: "Fitness Fanatic", Emoji: "💪", Tier: domain.TierIntermediate},
	{Level: 20, Title: "Wellness Wizard", Emoji: "🧙", Tier: domain.TierIntermediate},
	{Level: 21, Title: "Nutrition Knight", Emoji: "⚔️", Tier: domain.TierIntermediate},
	{Level: 22, Title: "Calorie Crusader", Emoji: "🏰", Tier: domain.TierIntermediate},
	{Level: 23, Title: "Macro Marshal", Emoji: "🎖️", Tier: domain.TierIntermediate},
	{Level: 24, Title: "Diet Defender", Emoji: "🛡️", Tier: domain.TierIntermediate},
	{Level: 25, Title: "Health Guardian", Emoji: "👼", Tier: domain.TierIntermediate},

	// ── Advanced (26-40) ────────────────────────────────────────────
	{Level: 26, Title: "Nutrition Ninja", Emoji: "🥷", Tier: domain.TierAdvanced},
	{Level: 27, Title: "Calorie Champion", Emoji: "🏆", Tier: domain.TierAdvanced},
	{Level: 28, Title: "Macro Master", Emoji: "🎓", Tier: domain.TierAdvanced},
	{Level: 29, Title: "Wellness Sage", Emoji: "🧘", Tier: domain.TierAdvanced},
	{Level: 30, Title: "Health Luminary", Emoji: "✨", Tier: domain.TierAdvanced},
	{Level: 31, Title: "Diet Virtuoso", Emoji: "🎻", Tier: domain.TierAdvanced},
	{Level: 32, Title: "Protein Prodigy", Emoji: "💪", Tier: domain.TierAdvanced},
	{Level: 33, Title: "Balance Sage", Emoji: "⚖️", Tier: domain.TierAdvanced},
	{Level: 34, Title: "Nutrition Oracle", Emoji: "🔮", Tier: domain.TierAdvanced},
	{Level: 35, Title: "Macro Savant", Emoji: "🧠", Tier: domain.TierAdvanced},
	{Level: 36, Title: "Health Titan", Emoji: "💎", Tier: domain.TierAdvanced},
	{Level: 37, Title: "Wellness Overlord", Emoji: "👑", Tier: domain.TierAdvanced},
	{Level: 38, Title: "Calorie Conqueror", Emoji: "⚔️", Tier: domain.TierAdvanced},
	{Level: 39, Title: "Nutrition Sovereign", Emoji: "👑", Tier: domain.TierAdvanced},
	{Level: 40, Title: "Diet Deity", Emoji: "⚡", Tier: domain.TierAdvanced},

	// ── Elite (41-50) ───────────────────────────────────────────────
	{Level: 41, Title: "Legendary Tracker", Emoji: "🌟", Tier: domain.TierElite},
	{Level: 42, Title: "Macro Immortal", Emoji: "♾️", Tier: domain.TierElite},
	{Level: 43, Title: "Health Ascendant", Emoji: "🚀", Tier: domain.TierElite},
	{Level: 44, Title: "Wellness Transcendent", Emoji: "🌌", Tier: domain.TierElite},
	{Level: 45, Title: "Nutrition Demigod", Emoji: "🔱", Tier: domain.TierElite},
	{Level: 46, Title: "Calorie Overlord", Emoji: "👹", Tier: domain.TierElite},
	{Level: 47, Title: "Balance Paragon", Emoji: "💫", Tier: domain.TierElite},
	{Level: 48, Title: "Protein Deity", Emoji: "💪✨", Tier: domain.TierElite},
	{Level: 49, Title: "Macro Eternal", Emoji: "♾️✨", Tier: domain.TierElite},
	{Level: 50, Title: "NUTRITION LEGEND", Emoji: "🏆👑", Tier: domain.TierElite},

	// ── Cosmic (51-70) ──────────────────────────────────────────────
	{Level: 51, Title: "Cosmic Nutritionist", Emoji: "🌌", Tier: domain.TierCosmic},
	{Level: 52, Title: "Stellar Tracker", Emoji: "🌠", Tier: domain.TierCosmic},
	{Level: 53, Title: "Galactic Guru", Emoji: "🌌", Tier: domain.TierCosmic},
	{Level: 54, Title: "Universal Master", Emoji: "🌍", Tier: domain.TierCosmic},
	{Level: 55, Title: "Quantum Analyst", Emoji: "⚛️", Tier: domain.TierCosmic},
	{Level: 56, Title: "Dimension Walker", Emoji: "🌀", Tier: domain.TierCosmic},
	{Level: 57, Title: "Time Lord", Emoji: "⏰", Tier: domain.TierCosmic},
	{Level: 58, Title: "Reality Shaper", Emoji: "✨", Tier: domain.TierCosmic},
	{Level: 59, Title: "Cosmic Entity", Emoji: "🌌", Tier: domain.TierCosmic},
	{Level: 60, Title: "Transcendent Being", Emoji: "🌠", Tier: domain.TierCosmic},
	{Level: 61, Title: "Omniscient Oracle", Emoji: "👁️", Tier: domain.TierCosmic},
	{Level: 62, Title: "Supreme Nutritionist", Emoji: "👑", Tier: domain.TierCosmic},
	{Level: 63, Title: "Eternal Wisdom", Emoji: "♾️", Tier: domain.TierCosmic},
	{Level: 64, Title: "Universal Guardian", Emoji: "🛡️", Tier: domain.TierCosmic},
	{Level: 65, Title: "Celestial Master", Emoji: "⭐", Tier: domain.TierCosmic},
	{Level: 66, Title: "Divine Tracker", Emoji: "✨", Tier: domain.TierCosmic},
	{Level: 67, Title: "Infinite Being", Emoji: "♾️", Tier: domain.TierCosmic},
	{Level: 68, Title: "Macro Omnipotent", Emoji: "💫", Tier: domain.TierCosmic},
	{Level: 69, Title: "Nutrition Nirvana", Emoji: "🕉️", Tier: domain.TierCosmic},
	{Level: 70, Title: "Health Enlightened", Emoji: "☀️", Tier: domain.TierCosmic},

	// ── God (71-100) ────────────────────────────────────────────────
	{Level: 71, Title: "Immortal Legend", Emoji: "♾️🏆", Tier: domain.TierGod},
	{Level: 72, Title: "Supreme Being", Emoji: "👑✨", Tier: domain.TierGod},
	{Level: 73, Title: "Alpha Omega", Emoji: "Ω", Tier: domain.TierGod},
	{Level: 74, Title: "Primordial Force", Emoji: "💥", Tier: domain.TierGod},
	{Level: 75, Title: "Absolute Power", Emoji: "⚡", Tier: domain.TierGod},
	{Level: 76, Title: "Omnipotent One", Emoji: "🌟", Tier: domain.TierGod},
	{Level: 77, Title: "Creator Divine", Emoji: "✨", Tier: domain.TierGod},
	{Level: 78, Title: "Ultimate Authority", Emoji: "👑", Tier: domain.TierGod},
	{Level: 79, Title: "Eternal Sovereign", Emoji: "♾️👑", Tier: domain.TierGod},
	{Level: 80, Title: "Mythic Deity", Emoji: "⚡👑", Tier: domain.TierGod},
	{Level: 81, Title: "Legendary God", Emoji: "🌟👑", Tier: domain.TierGod},
	{Level: 82, Title: "Apex Existence", Emoji: "💎", Tier: domain.TierGod},
	{Level: 83, Title: "Omniversal Mind", Emoji: "🧠✨", Tier: domain.TierGod},
	{Level: 84, Title: "Boundless Spirit", Emoji: "🌌", Tier: domain.TierGod},
	{Level: 85, Title: "Infinite Wisdom", Emoji: "♾️💡", Tier: domain.TierGod},
	{Level: 86, Title: "Perfect Balance", Emoji: "⚖️✨", Tier: domain.TierGod},
	{Level: 87, Title: "Divine Harmony", Emoji: "🕊️", Tier: domain.TierGod},
	{Level: 88, Title: "Sacred Perfection", Emoji: "✨", Tier: domain.TierGod},
	{Level: 89, Title: "Celestial Emperor", Emoji: "👑🌟", Tier: domain.TierGod},
	{Level: 90, Title: "Cosmic Overlord", Emoji: "🌌👑", Tier: domain.TierGod},
	{Level: 91, Title: "Primeval God", Emoji: "⚡👑", Tier: domain.TierGod},
	{Level: 92, Title: "Eternal Presence", Emoji: "♾️", Tier: domain.TierGod},
	{Level: 93, Title: "Ultimate Reality", Emoji: "🌟", Tier: domain.TierGod},
	{Level: 94, Title: "Infinite Creator", Emoji: "✨♾️", Tier: domain.TierGod},
	{Level: 95, Title: "Supreme Architect", Emoji: "🏗️👑", Tier: domain.TierGod},
	{Level: 96, Title: "Divine Absolute", Emoji: "⚡✨", Tier: domain.TierGod},
	{Level: 97, Title: "Omnipotent Force", Emoji: "💫👑", Tier: domain.TierGod},
	{Level: 98, Title: "Celestial Supreme", Emoji: "🌠👑", Tier: domain.TierGod},
	{Level: 99, Title: "Nutrition Immortal", Emoji: "♾️🏆", Tier: domain.TierGod},
	{Level: 100, Title: "NUTRIO GOD", Emoji: "🌟👑⚡", Tier: domain.TierGod},
}
