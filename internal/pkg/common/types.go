package common

import (
	"time"
)

// Ingredient is a single recipe ingredient. Only the name participates in
// similarity comparisons.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Instruction is a single ordered recipe step.
type Instruction struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	TimeMinutes *int   `json:"time_minutes,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CandidateRecipe is the unsaved recipe content checked for duplicates.
type CandidateRecipe struct {
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	CookingTime  *int          `json:"cooking_time,omitempty"`
	Servings     *int          `json:"servings,omitempty"`
	Source       string        `json:"source,omitempty"`
	IsVegetarian bool          `json:"is_vegetarian"`
	IsVegan      bool          `json:"is_vegan"`
	IsGlutenFree bool          `json:"is_gluten_free"`
	IsDairyFree  bool          `json:"is_dairy_free"`
}

// Recipe is the persisted form of a recipe. DeletedAt marks a soft delete;
// deleted recipes never take part in duplicate comparison.
type Recipe struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
	CandidateRecipe
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
