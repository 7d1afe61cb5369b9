package types

// StepType is the role of a form builder step.
type StepType string

const (
	StepTrigger     StepType = "trigger"
	StepConditional StepType = "conditional"
	StepCommonFinal StepType = "common_final"
)

// Section maps a step type to the form section its category is published under.
func (t StepType) Section() FormSection {
	switch t {
	case StepTrigger:
		return SectionTrigger
	case StepConditional:
		return SectionConditional
	case StepCommonFinal:
		return SectionCommonFinal
	default:
		return SectionNone
	}
}

// FormBuilderItem is an item drafted inside a step's category.
type FormBuilderItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	AutoSelect bool   `json:"auto_select,omitempty"`
}

// FormBuilderCategory is the category a step publishes.
type FormBuilderCategory struct {
	ID          int64             `json:"id"`
	DisplayName string            `json:"display_name"`
	Description string            `json:"description,omitempty"`
	ProductType ProductType       `json:"product_type"`
	Items       []FormBuilderItem `json:"items"`
}

// FormBuilderCondition gates a conditional step on the answer to an earlier
// trigger category: FieldID is that category's ID, Value the expected answer.
type FormBuilderCondition struct {
	FieldID int64 `json:"field_id"`
	Value   any   `json:"value"`
}

// FormBuilderStep is one entry in a draft. Condition is set only for
// conditional steps.
type FormBuilderStep struct {
	Type      StepType              `json:"type"`
	Category  FormBuilderCategory   `json:"category"`
	Condition *FormBuilderCondition `json:"condition,omitempty"`
}

// FormBuilderData is the mutable draft of one shooting category's form.
// It is persisted as opaque JSON and only published on request.
type FormBuilderData struct {
	ShopID               int64             `json:"shop_id"`
	ShootingCategoryID   int64             `json:"shooting_category_id"`
	ShootingCategoryName string            `json:"shooting_category_name"`
	Steps                []FormBuilderStep `json:"steps"`
}
