package formbuilder

import (
	"fmt"

	"github.com/gosimple/slug"

	"github.com/shutterbook/simulator/internal/types"
)

// Conversion is the catalog a draft publishes to.
type Conversion struct {
	Categories []types.ProductCategory `json:"categories"`
	Items      []types.Item            `json:"items"`
}

// ConvertToProductCategories turns each step into a product category and
// flattens the steps' items, tagging each with its category's ID.
//
// Conditional steps get the rule {AND: [category_<FieldID> = Value]}.
// sort_order is the step's position in the draft.
func ConvertToProductCategories(data types.FormBuilderData) Conversion {
	out := Conversion{
		Categories: make([]types.ProductCategory, 0, len(data.Steps)),
		Items:      []types.Item{},
	}

	for i, s := range data.Steps {
		category := types.ProductCategory{
			ID:                 s.Category.ID,
			ShopID:             data.ShopID,
			ShootingCategoryID: data.ShootingCategoryID,
			Name:               machineName(s.Category.DisplayName, i),
			DisplayName:        s.Category.DisplayName,
			Description:        s.Category.Description,
			IsActive:           true,
			FormSection:        s.Type.Section(),
			ProductType:        s.Category.ProductType,
			SortOrder:          i,
		}
		if s.Type == types.StepConditional && s.Condition != nil {
			category.ConditionalRule = types.MatchAll(types.Cond(
				types.CategoryField(s.Condition.FieldID),
				types.OpEq,
				types.NormalizeValue(s.Condition.Value),
			))
		}
		out.Categories = append(out.Categories, category)

		for j, item := range s.Category.Items {
			out.Items = append(out.Items, types.Item{
				ID:                 item.ID,
				ShopID:             data.ShopID,
				ProductCategoryID:  s.Category.ID,
				ShootingCategoryID: data.ShootingCategoryID,
				Name:               item.Name,
				Price:              item.Price,
				IsActive:           true,
				AutoSelect:         item.AutoSelect,
				SortOrder:          j,
			})
		}
	}
	return out
}

// machineName slugs a display name. Names that slug to nothing fall back
// to the step position.
func machineName(displayName string, index int) string {
	if s := slug.Make(displayName); s != "" {
		return s
	}
	return fmt.Sprintf("step-%d", index+1)
}
