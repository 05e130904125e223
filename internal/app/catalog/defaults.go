package catalog

import "github.com/nutrio/nutrio/internal/domain"

// Cap buckets. Only low-effort repeatable actions are capped; goals, streaks
// and achievements never are.
const (
	BucketMealLogging  = "meal_logging"
	BucketWaterLogging = "water_logging"
)

// Reward source ids referenced by code. The rest only exist as catalog data.
const (
	SourceDailyLogin        = "daily_login"
	SourceThreeDayStreak    = "three_day_streak"
	SourceSevenDayStreak    = "seven_day_streak"
	SourceFourteenDayStreak = "fourteen_day_streak"
	SourceThirtyDayStreak   = "thirty_day_streak"

	SourceFirstAchievement       = "first_achievement"
	SourceTenAchievements        = "ten_achievements"
	SourceTwentyFiveAchievements = "twenty_five_achievements"
	SourceFiftyAchievements      = "fifty_achievements"
	SourceAllAchievements        = "all_achievements"
)

func defaultCaps() map[string]int {
	return map[string]int{
		BucketMealLogging:  200,
		BucketWaterLogging: 100,
	}
}

func defaultSources() []domain.RewardSourceDef {
	meal := func(id string, xp int) domain.RewardSourceDef {
		return domain.RewardSourceDef{ID: id, BaseAmount: xp, CapBucket: BucketMealLogging}
	}
	water := func(id string, xp int) domain.RewardSourceDef {
		return domain.RewardSourceDef{ID: id, BaseAmount: xp, CapBucket: BucketWaterLogging}
	}
	free := func(id string, xp int) domain.RewardSourceDef {
		return domain.RewardSourceDef{ID: id, BaseAmount: xp}
	}

	return []domain.RewardSourceDef{
		// ── Meal logging ───────────────────────────────────────────────
		meal("meal_log", 10),
		meal("meal_log_with_photo", 15),
		meal("meal_log_barcode", 12),
		free("all_three_meals", 50),
		free("five_meals_day", 30),

		// ── Accuracy & detail ──────────────────────────────────────────
		meal("add_notes", 5),
		meal("log_portion_size", 8),
		meal("complete_macros", 10),

		// ── Goals ──────────────────────────────────────────────────────
		free("hit_calorie_goal", 30),
		free("hit_protein_goal", 25),
		free("hit_carbs_goal", 20),
		free("hit_fat_goal", 20),
		free("hit_all_macros", 100),
		free("within_50_calories", 40),

		// ── Hydration ──────────────────────────────────────────────────
		water("log_water_glass", 5),
		free("meet_water_goal", 30),
		free("eight_glasses", 50),

		// ── Streaks ────────────────────────────────────────────────────
		free(SourceDailyLogin, 5),
		free(SourceThreeDayStreak, 25),
		free(SourceSevenDayStreak, 75),
		free(SourceFourteenDayStreak, 150),
		free(SourceThirtyDayStreak, 400),

		// ── Consistency ────────────────────────────────────────────────
		free("five_days_week", 100),
		free("seven_days_week", 200),
		free("breakfast_on_time", 15),
		meal("log_within_30_min", 10),

		// ── Premium features ───────────────────────────────────────────
		free("view_ai_meal", 5),
		free("add_to_planner", 15),
		free("complete_meal_plan", 150),
		free("generate_grocery_list", 20),
		free("mark_item_purchased", 2),
		free("complete_grocery_list", 75),
		free("scan_fridge", 30),
		free("get_meal_suggestion", 25),
		free("save_custom_recipe", 25),
		free("try_ai_recipe", 30),
		free("rate_recipe", 5),
		free("review_recipe", 10),
		free("view_analytics", 10),
		free("export_data", 15),
		free("view_monthly_trends", 20),

		// ── Achievement milestones ─────────────────────────────────────
		free(SourceFirstAchievement, 100),
		free(SourceTenAchievements, 200),
		free(SourceTwentyFiveAchievements, 500),
		free(SourceFiftyAchievements, 1000),
		free(SourceAllAchievements, 5000),

		// ── One-time bonuses ───────────────────────────────────────────
		free("complete_onboarding", 100),
		free("setup_notifications", 25),
		free("upload_profile_photo", 15),
		free("enable_dark_mode", 5),

		// ── Social ─────────────────────────────────────────────────────
		free("add_friend", 20),
		free("send_encouragement", 5),
		free("complete_challenge", 100),
		free("refer_user", 500),
	}
}

func defaultAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		{ID: "first_meal", Name: "First Bite", Icon: "🍽️", Difficulty: domain.DifficultyEasy},
		{ID: "first_photo_log", Name: "Food Photographer", Icon: "📸", Difficulty: domain.DifficultyEasy},
		{ID: "early_bird", Name: "Early Bird", Icon: "🌅", Difficulty: domain.DifficultyEasy},
		{ID: "recipe_creator", Name: "Home Chef", Icon: "👩‍🍳", Difficulty: domain.DifficultyEasy},
		{ID: "hydration_hero", Name: "Hydration Hero", Icon: "💧", Difficulty: domain.DifficultyMedium},
		{ID: "protein_pro", Name: "Protein Pro", Icon: "💪", Difficulty: domain.DifficultyMedium},
		{ID: "week_streak", Name: "Week Warrior", Icon: "🔥", Difficulty: domain.DifficultyMedium},
		{ID: "meal_planner", Name: "Meal Planner", Icon: "🗓️", Difficulty: domain.DifficultyMedium},
		{ID: "grocery_guru", Name: "Grocery Guru", Icon: "🛒", Difficulty: domain.DifficultyMedium},
		{ID: "macro_master", Name: "Macro Master", Icon: "🎯", Difficulty: domain.DifficultyHard},
		{ID: "month_streak", Name: "Monthly Machine", Icon: "🏛️", Difficulty: domain.DifficultyHard},
		{ID: "perfect_week", Name: "Perfect Week", Icon: "🏆", Difficulty: domain.DifficultyHard},
	}
}

func defaultMilestones() []Milestone {
	return []Milestone{
		{Count: 1, Source: SourceFirstAchievement},
		{Count: 10, Source: SourceTenAchievements},
		{Count: 25, Source: SourceTwentyFiveAchievements},
		{Count: 50, Source: SourceFiftyAchievements},
	}
}

// StreakMilestones maps streak lengths to the source granted on reaching them.
func StreakMilestones() []Milestone {
	return []Milestone{
		{Count: 3, Source: SourceThreeDayStreak},
		{Count: 7, Source: SourceSevenDayStreak},
		{Count: 14, Source: SourceFourteenDayStreak},
		{Count: 30, Source: SourceThirtyDayStreak},
	}
}
