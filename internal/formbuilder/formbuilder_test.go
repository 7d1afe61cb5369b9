package formbuilder

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shutterbook/simulator/internal/types"
)

func planCategory() types.FormBuilderCategory {
	return types.FormBuilderCategory{
		ID:          10,
		DisplayName: "Shooting Plan",
		ProductType: types.ProductTypePlan,
		Items: []types.FormBuilderItem{
			{ID: 101, Name: "Studio", Price: 30000},
			{ID: 102, Name: "Outdoor", Price: 45000},
		},
	}
}

func studioOptions() types.FormBuilderCategory {
	return types.FormBuilderCategory{
		ID:          11,
		DisplayName: "Studio Options",
		ProductType: types.ProductTypeOptionMulti,
		Items:       []types.FormBuilderItem{{ID: 111, Name: "Extra outfit", Price: 8000}},
	}
}

func dataCategory() types.FormBuilderCategory {
	return types.FormBuilderCategory{
		ID:          12,
		DisplayName: "Photo Data",
		ProductType: types.ProductTypeOptionSingle,
		Items:       []types.FormBuilderItem{{ID: 121, Name: "All cuts", Price: 10000, AutoSelect: true}},
	}
}

func TestInit(t *testing.T) {
	data := Init(1, 2, "Newborn")

	if data.ShopID != 1 || data.ShootingCategoryID != 2 || data.ShootingCategoryName != "Newborn" {
		t.Errorf("Init() = %+v, want shop 1, shooting category 2 named Newborn", data)
	}
	if data.Steps == nil || len(data.Steps) != 0 {
		t.Errorf("Init().Steps = %v, want empty non-nil slice", data.Steps)
	}
}

func TestAddConditionalStep_RequiresTrigger(t *testing.T) {
	data := Init(1, 2, "Newborn")

	got, err := AddConditionalStep(data, studioOptions(), types.FormBuilderCondition{FieldID: 10, Value: float64(101)})
	if err == nil {
		t.Fatalf("AddConditionalStep() error = nil, want configuration error")
	}
	if !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("AddConditionalStep() error = %v, want ErrConfiguration", err)
	}
	if !strings.Contains(err.Error(), "trigger step") {
		t.Errorf("AddConditionalStep() error = %q, want mention of trigger step", err.Error())
	}
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("AddConditionalStep() error type = %T, want *types.ConfigurationError", err)
	}
	if len(got.Steps) != 0 {
		t.Errorf("AddConditionalStep() returned %d steps on error, want 0", len(got.Steps))
	}
}

func TestAddConditionalStep_FieldMustReferenceTrigger(t *testing.T) {
	data := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	data = AddCommonFinalStep(data, dataCategory())

	tests := []struct {
		name    string
		fieldID int64
		wantErr bool
	}{
		{name: "trigger category", fieldID: 10, wantErr: false},
		{name: "common_final category", fieldID: 12, wantErr: true},
		{name: "unknown category", fieldID: 99, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddConditionalStep(data, studioOptions(), types.FormBuilderCondition{FieldID: tt.fieldID, Value: "studio"})
			if (err != nil) != tt.wantErr {
				t.Errorf("AddConditionalStep() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddSteps_DoNotMutateInput(t *testing.T) {
	base := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	snapshot := len(base.Steps)

	_ = AddTriggerStep(base, planCategory())
	_ = AddCommonFinalStep(base, dataCategory())
	if _, err := AddConditionalStep(base, studioOptions(), types.FormBuilderCondition{FieldID: 10, Value: "studio"}); err != nil {
		t.Fatalf("AddConditionalStep() error = %v, want nil", err)
	}
	_ = RemoveStep(base, 0)

	if len(base.Steps) != snapshot {
		t.Errorf("input draft has %d steps after edits, want %d", len(base.Steps), snapshot)
	}
	if base.Steps[0].Type != types.StepTrigger {
		t.Errorf("input draft step 0 type = %q, want trigger", base.Steps[0].Type)
	}
}

func TestAddTriggerStep_AllowsSeveral(t *testing.T) {
	data := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	data = AddTriggerStep(data, dataCategory())

	if len(data.Steps) != 2 || data.Steps[1].Type != types.StepTrigger {
		t.Errorf("AddTriggerStep() steps = %+v, want two trigger steps", data.Steps)
	}
}

func TestRemoveStep(t *testing.T) {
	data := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	data = AddCommonFinalStep(data, dataCategory())

	tests := []struct {
		name    string
		index   int
		wantIDs []int64
	}{
		{name: "first", index: 0, wantIDs: []int64{12}},
		{name: "last", index: 1, wantIDs: []int64{10}},
		{name: "negative is a no-op", index: -1, wantIDs: []int64{10, 12}},
		{name: "past the end is a no-op", index: 5, wantIDs: []int64{10, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveStep(data, tt.index)
			var ids []int64
			for _, s := range got.Steps {
				ids = append(ids, s.Category.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("RemoveStep(%d) category ids = %v, want %v", tt.index, ids, tt.wantIDs)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	empty := types.FormBuilderCategory{ID: 20, DisplayName: "Empty", ProductType: types.ProductTypePlan}
	data := AddCommonFinalStep(Init(1, 2, "Newborn"), empty)
	data = AddCommonFinalStep(data, types.FormBuilderCategory{ID: 21, ProductType: types.ProductTypePlan})

	result := Validate(data)

	if result.IsValid {
		t.Fatalf("Validate().IsValid = true, want false")
	}
	want := []string{
		"missing trigger step",
		`category "Empty" has no items`,
		"category #2 has no items",
	}
	if !reflect.DeepEqual(result.Errors, want) {
		t.Errorf("Validate().Errors = %q, want %q", result.Errors, want)
	}
}

func TestValidate_CompleteDraft(t *testing.T) {
	data := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	data = AddCommonFinalStep(data, dataCategory())

	result := Validate(data)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Errorf("Validate() = %+v, want valid with no errors", result)
	}
}

func TestValidate_ConditionOnRemovedTrigger(t *testing.T) {
	data := AddTriggerStep(Init(1, 2, "Newborn"), planCategory())
	data, err := AddConditionalStep(data, studioOptions(), types.FormBuilderCondition{FieldID: 10, Value: "studio"})
	if err != nil {
		t.Fatalf("AddConditionalStep() error = %v, want nil", err)
	}
	data = RemoveStep(data, 0)

	result := Validate(data)

	if result.IsValid {
		t.Fatalf("Validate().IsValid = true, want false")
	}
	want := []string{
		"missing trigger step",
		`conditional step "Studio Options" condition references missing trigger 10`,
	}
	if !reflect.DeepEqual(result.Errors, want) {
		t.Errorf("Validate().Errors = %q, want %q", result.Errors, want)
	}
}
