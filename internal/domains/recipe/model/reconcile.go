package model

// StepUpsert is one desired step resolved against the stored steps.
// StepID == 0 means the step is new and must be inserted.
type StepUpsert struct {
	StepID int64
	Step   StepInput
}

func (u StepUpsert) IsInsert() bool {
	return u.StepID == 0
}

// ReconcilePlan is the set of writes that turns the stored steps into the desired ones
type ReconcilePlan struct {
	Upserts []StepUpsert
	Deletes []int64
}

// Reconcile diffs the stored steps of a recipe against the desired steps.
//
// A desired step targets an existing row by its explicit StepID when that id
// belongs to the recipe, otherwise by matching step number. Each stored row is
// claimed at most once; unmatched desired steps become inserts. Stored rows that
// no desired step claimed are deleted.
//
// Pruning is by claim, not by number: a stored row whose number still appears in
// desired is deleted when that number was taken by an explicit StepID, and a row
// kept through its StepID survives even though its old number is gone.
//
// Upserts keep the order of desired; Deletes keep the order of current.
func Reconcile(current []StepRef, desired []StepInput) ReconcilePlan {
	owned := make(map[int64]bool, len(current))
	byNumber := make(map[int]int64, len(current))
	for _, ref := range current {
		owned[ref.ID] = true
		if _, dup := byNumber[ref.Number]; !dup {
			byNumber[ref.Number] = ref.ID
		}
	}

	claimed := make(map[int64]bool, len(current))

	// explicit ids first so a renumbered step is not stolen by a number match
	targets := make([]int64, len(desired))
	for i, step := range desired {
		if step.StepID != 0 && owned[step.StepID] && !claimed[step.StepID] {
			targets[i] = step.StepID
			claimed[step.StepID] = true
		}
	}
	for i, step := range desired {
		if targets[i] != 0 {
			continue
		}
		if id, ok := byNumber[step.StepNumber]; ok && !claimed[id] {
			targets[i] = id
			claimed[id] = true
		}
	}

	plan := ReconcilePlan{
		Upserts: make([]StepUpsert, 0, len(desired)),
	}
	for i, step := range desired {
		plan.Upserts = append(plan.Upserts, StepUpsert{StepID: targets[i], Step: step})
	}
	for _, ref := range current {
		if !claimed[ref.ID] {
			plan.Deletes = append(plan.Deletes, ref.ID)
		}
	}

	return plan
}
