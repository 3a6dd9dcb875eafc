package model

import "sort"

// AssembleRecipe builds the nested read model from normalized rows.
// Steps come out ordered by step number; lines keep their input order
// within a step and are attached only to the step they reference.
func AssembleRecipe(recipe Recipe, steps []Step, lines []IngredientLine) *RecipeDetail {
	byStep := make(map[int64][]StepIngredientDetail, len(steps))
	for _, line := range lines {
		byStep[line.StepID] = append(byStep[line.StepID], StepIngredientDetail{
			IngredientID:   line.ID,
			IngredientName: line.Name,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
		})
	}

	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Number < ordered[j].Number
	})

	detail := &RecipeDetail{
		Recipe: recipe,
		Steps:  make([]StepDetail, 0, len(ordered)),
	}
	for _, step := range ordered {
		// nil (not empty) so the key is dropped from the JSON
		detail.Steps = append(detail.Steps, StepDetail{
			Step:        step,
			Ingredients: byStep[step.ID],
		})
	}

	return detail
}
