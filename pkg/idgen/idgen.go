// Package idgen produces short random identifiers and retries them against
// a caller-supplied existence check until an unused one is found.
package idgen

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength matches the width of the recipes.recipe_id column.
const DefaultLength = 21

// Generator returns a new candidate identifier.
type Generator func() (string, error)

// ExistsFunc reports whether id is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// NanoID returns a Generator drawing URL-safe nanoids of the given length.
func NanoID(length int) Generator {
	return func() (string, error) {
		return gonanoid.New(length)
	}
}

// Unique draws candidates from gen until exists reports one as free.
// There is no attempt limit; the loop ends on success, on an error from
// gen or exists, or when ctx is done.
func Unique(ctx context.Context, gen Generator, exists ExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}

		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check id %q: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
}
