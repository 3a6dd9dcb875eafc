package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MsgMalformedBody is returned when the body is not a JSON object at all
const MsgMalformedBody = "request body must be a valid recipe JSON object"

// =====================================================
// REQUEST DECODING
// =====================================================

// DecodeRecipeRequest decodes a create/update body field by field. A field of
// the wrong JSON type does not abort decoding: its message is reported together
// with every regular validation message of the rest of the payload.
func DecodeRecipeRequest(body []byte) (RecipeRequest, error) {
	var req RecipeRequest

	fields, ok := decodeObject(body)
	if !ok {
		return req, NewValidationError(MsgMalformedBody)
	}

	typeErrs := validation.Errors{}
	decodeField(fields, "recipe_name", &req.RecipeName, "recipe name must be a string", typeErrs)
	if raw, ok := present(fields, "steps"); ok {
		steps, err := decodeSteps(raw)
		req.Steps = steps
		if err != nil {
			typeErrs["steps"] = err
		}
	}

	if len(typeErrs) == 0 {
		return req, nil
	}

	req.Normalize()
	errs, err := req.fieldErrors()
	if err != nil {
		return req, err
	}
	overlayErrors(errs, typeErrs)
	return req, NewValidationError(FlattenErrors(errs)...)
}

func decodeSteps(raw json.RawMessage) ([]StepInput, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.New("steps must be an array of step objects")
	}

	steps := make([]StepInput, len(items))
	errs := validation.Errors{}
	for i, item := range items {
		if err := decodeStep(item, &steps[i]); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) == 0 {
		return steps, nil
	}
	return steps, errs
}

func decodeStep(raw json.RawMessage, step *StepInput) error {
	fields, ok := decodeObject(raw)
	if !ok {
		return errors.New("step must be an object")
	}

	errs := validation.Errors{}
	decodeField(fields, "step_id", &step.StepID, "step id must be an integer", errs)
	decodeField(fields, "step_number", &step.StepNumber, "step number must be a positive integer", errs)
	decodeField(fields, "step_instructions", &step.Instructions, "step instructions must be a string", errs)

	if raw, ok := present(fields, "ingredients"); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			errs["ingredients"] = errors.New("ingredients must be an array of ingredient objects")
		} else {
			step.Ingredients = make([]IngredientInput, len(items))
			ingErrs := validation.Errors{}
			for i, item := range items {
				if err := decodeIngredient(item, &step.Ingredients[i]); err != nil {
					ingErrs[strconv.Itoa(i)] = err
				}
			}
			if len(ingErrs) > 0 {
				errs["ingredients"] = ingErrs
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func decodeIngredient(raw json.RawMessage, ing *IngredientInput) error {
	fields, ok := decodeObject(raw)
	if !ok {
		return errors.New("ingredient must be an object")
	}

	errs := validation.Errors{}
	decodeField(fields, "ingredient_id", &ing.IngredientID, "ingredient id must be a positive integer", errs)
	decodeField(fields, "quantity", &ing.Quantity, "quantity must be a positive number", errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// decodeObject accepts only a JSON object; null, arrays and scalars are rejected
func decodeObject(raw []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// present treats an explicit null like a missing key
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func decodeField(fields map[string]json.RawMessage, key string, dst interface{}, msg string, errs validation.Errors) {
	raw, ok := present(fields, key)
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		errs[key] = errors.New(msg)
	}
}

// overlayErrors merges src into dst; a type error replaces the validation error at the same key
func overlayErrors(dst, src validation.Errors) {
	for k, v := range src {
		srcNested, srcOK := v.(validation.Errors)
		dstNested, dstOK := dst[k].(validation.Errors)
		if srcOK && dstOK {
			overlayErrors(dstNested, srcNested)
			continue
		}
		dst[k] = v
	}
}
