package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func step(number int, instructions string) StepInput {
	return StepInput{StepNumber: number, Instructions: instructions}
}

func TestReconcile_DropsStepMissingFromDesired(t *testing.T) {
	current := []StepRef{{ID: 10, Number: 1}, {ID: 11, Number: 2}}
	desired := []StepInput{step(1, "Boil plenty of salted water.")}

	plan := Reconcile(current, desired)

	assert.Equal(t, []StepUpsert{{StepID: 10, Step: desired[0]}}, plan.Upserts)
	assert.Equal(t, []int64{11}, plan.Deletes)
}

func TestReconcile_InsertsUnknownNumbers(t *testing.T) {
	current := []StepRef{{ID: 10, Number: 1}}
	desired := []StepInput{step(1, "first step text"), step(5, "fifth step text")}

	plan := Reconcile(current, desired)

	assert.Len(t, plan.Upserts, 2)
	assert.False(t, plan.Upserts[0].IsInsert())
	assert.Equal(t, int64(10), plan.Upserts[0].StepID)
	assert.True(t, plan.Upserts[1].IsInsert())
	assert.Empty(t, plan.Deletes)
}

func TestReconcile_EmptyCurrentInsertsEverything(t *testing.T) {
	desired := []StepInput{step(1, "aaaaaaaaaaaa"), step(2, "bbbbbbbbbbbb")}

	plan := Reconcile(nil, desired)

	for _, u := range plan.Upserts {
		assert.True(t, u.IsInsert())
	}
	assert.Empty(t, plan.Deletes)
}

func TestReconcile_ExplicitIDRenumbersInPlace(t *testing.T) {
	// step 10 moves from number 1 to number 2; the old number-2 row is dropped
	current := []StepRef{{ID: 10, Number: 1}, {ID: 11, Number: 2}}
	desired := []StepInput{{StepID: 10, StepNumber: 2, Instructions: "moved to second"}}

	plan := Reconcile(current, desired)

	assert.Equal(t, int64(10), plan.Upserts[0].StepID)
	assert.Equal(t, []int64{11}, plan.Deletes)
}

func TestReconcile_PrunesUnclaimedRowNotAbsentNumber(t *testing.T) {
	// number 1 is still desired but row 10 lost it to row 20's explicit id
	current := []StepRef{{ID: 10, Number: 1}, {ID: 20, Number: 2}}
	desired := []StepInput{{StepID: 20, StepNumber: 1, Instructions: "now the first step"}}

	plan := Reconcile(current, desired)

	assert.Equal(t, []StepUpsert{{StepID: 20, Step: desired[0]}}, plan.Upserts)
	assert.Equal(t, []int64{10}, plan.Deletes)
}

func TestReconcile_SwapNumbersByExplicitID(t *testing.T) {
	current := []StepRef{{ID: 10, Number: 1}, {ID: 11, Number: 2}}
	desired := []StepInput{
		{StepID: 11, StepNumber: 1, Instructions: "was second, now first"},
		{StepID: 10, StepNumber: 2, Instructions: "was first, now second"},
	}

	plan := Reconcile(current, desired)

	assert.Equal(t, int64(11), plan.Upserts[0].StepID)
	assert.Equal(t, int64(10), plan.Upserts[1].StepID)
	assert.Empty(t, plan.Deletes)
}

func TestReconcile_ForeignExplicitIDFallsBackToNumber(t *testing.T) {
	current := []StepRef{{ID: 10, Number: 1}}
	desired := []StepInput{{StepID: 999, StepNumber: 1, Instructions: "id from another recipe"}}

	plan := Reconcile(current, desired)

	assert.Equal(t, int64(10), plan.Upserts[0].StepID)
	assert.Empty(t, plan.Deletes)
}

func TestReconcile_ExplicitIDWinsOverNumberMatch(t *testing.T) {
	// desired[0] matches row 10 by number, but desired[1] names row 10 explicitly
	current := []StepRef{{ID: 10, Number: 1}}
	desired := []StepInput{
		step(1, "new first step"),
		{StepID: 10, StepNumber: 3, Instructions: "old first moved"},
	}

	plan := Reconcile(current, desired)

	assert.True(t, plan.Upserts[0].IsInsert())
	assert.Equal(t, int64(10), plan.Upserts[1].StepID)
	assert.Empty(t, plan.Deletes)
}

func TestReconcile_EmptyDesiredDeletesAll(t *testing.T) {
	current := []StepRef{{ID: 1, Number: 1}, {ID: 2, Number: 2}, {ID: 3, Number: 7}}

	plan := Reconcile(current, nil)

	assert.Empty(t, plan.Upserts)
	assert.Equal(t, []int64{1, 2, 3}, plan.Deletes)
}

// uniqueNumbers draws n distinct positive step numbers
func uniqueNumbers(t *rapid.T, label string) []int {
	return rapid.SliceOfNDistinct(rapid.IntRange(1, 30), 0, 12, rapid.ID[int]).Draw(t, label)
}

func TestReconcile_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		currentNumbers := uniqueNumbers(t, "current")
		desiredNumbers := uniqueNumbers(t, "desired")

		current := make([]StepRef, len(currentNumbers))
		for i, n := range currentNumbers {
			current[i] = StepRef{ID: int64(100 + i), Number: n}
		}
		desired := make([]StepInput, len(desiredNumbers))
		for i, n := range desiredNumbers {
			desired[i] = StepInput{StepNumber: n, Instructions: "instruction text"}
		}

		plan := Reconcile(current, desired)

		if len(plan.Upserts) != len(desired) {
			t.Fatalf("want %d upserts, got %d", len(desired), len(plan.Upserts))
		}

		wanted := make(map[int]bool, len(desiredNumbers))
		for _, n := range desiredNumbers {
			wanted[n] = true
		}

		touched := make(map[int64]bool)
		for i, u := range plan.Upserts {
			if u.Step.StepNumber != desired[i].StepNumber {
				t.Fatalf("upsert %d out of order", i)
			}
			if u.IsInsert() {
				continue
			}
			if touched[u.StepID] {
				t.Fatalf("row %d targeted twice", u.StepID)
			}
			touched[u.StepID] = true
		}

		deleted := make(map[int64]bool)
		for _, id := range plan.Deletes {
			if touched[id] {
				t.Fatalf("row %d both updated and deleted", id)
			}
			deleted[id] = true
		}

		for _, ref := range current {
			// without explicit ids, a row survives exactly when its number is still wanted
			if wanted[ref.Number] == deleted[ref.ID] {
				t.Fatalf("row %d (number %d): wanted=%v deleted=%v", ref.ID, ref.Number, wanted[ref.Number], deleted[ref.ID])
			}
			if !touched[ref.ID] && !deleted[ref.ID] {
				t.Fatalf("row %d neither kept nor deleted", ref.ID)
			}
		}

		inserts := 0
		for _, u := range plan.Upserts {
			if u.IsInsert() {
				inserts++
			}
		}
		if got := len(current) - len(plan.Deletes) + inserts; got != len(desired) {
			t.Fatalf("resulting step count %d, want %d", got, len(desired))
		}
	})
}
