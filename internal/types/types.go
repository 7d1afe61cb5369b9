// Package types provides domain models shared across shutterbook components.
//
// Categories, items and campaigns are written by the admin API; the
// simulator only reads them. Form builder drafts live in forms.go, the rule
// language in rules.go.
package types

import (
	"strconv"
	"time"
)

// FormSection places a product category in the customer form.
// The empty string is the "null" section: no gating, always offered.
type FormSection string

const (
	SectionNone        FormSection = ""
	SectionTrigger     FormSection = "trigger"
	SectionConditional FormSection = "conditional"
	SectionCommonFinal FormSection = "common_final"
)

// ProductType controls how many items of a category a customer may pick.
type ProductType string

const (
	ProductTypePlan         ProductType = "plan"
	ProductTypeOptionSingle ProductType = "option_single"
	ProductTypeOptionMulti  ProductType = "option_multi"
)

// DiscountType selects how a campaign's DiscountValue is interpreted.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// FormValues holds the customer's in-progress answers keyed by field name.
// Values are JSON scalars, arrays of scalars, or nil. An absent key means
// the question has not been answered, which is distinct from a nil value.
type FormValues map[string]any

// categoryFieldPrefix namespaces answers that belong to a product category.
const categoryFieldPrefix = "category_"

// CategoryField returns the FormValues key holding the answer for a category.
func CategoryField(categoryID int64) string {
	return categoryFieldPrefix + strconv.FormatInt(categoryID, 10)
}

// ProductCategory is one section of the customer form.
type ProductCategory struct {
	ID                 int64            `json:"id" db:"id"`
	ShopID             int64            `json:"shop_id" db:"shop_id"`
	ShootingCategoryID int64            `json:"shooting_category_id" db:"shooting_category_id"`
	Name               string           `json:"name" db:"name"`
	DisplayName        string           `json:"display_name" db:"display_name"`
	Description        string           `json:"description" db:"description"`
	IsActive           bool             `json:"is_active" db:"is_active"`
	FormSection        FormSection      `json:"form_section" db:"form_section"`
	ProductType        ProductType      `json:"product_type" db:"product_type"`
	ConditionalRule    *ConditionalRule `json:"conditional_rule" db:"-"`
	SortOrder          int              `json:"sort_order" db:"sort_order"`
}

// Item is a priced option inside a product category.
// Price is integer yen before tax; negative prices are discount lines.
type Item struct {
	ID                 int64  `json:"id" db:"id"`
	ShopID             int64  `json:"shop_id" db:"shop_id"`
	ProductCategoryID  int64  `json:"product_category_id" db:"product_category_id"`
	ShootingCategoryID int64  `json:"shooting_category_id" db:"shooting_category_id"`
	Name               string `json:"name" db:"name"`
	Price              int64  `json:"price" db:"price"`
	IsActive           bool   `json:"is_active" db:"is_active"`
	AutoSelect         bool   `json:"auto_select" db:"auto_select"`
	SortOrder          int    `json:"sort_order" db:"sort_order"`
}

// CampaignAssociations lists what a campaign applies to. A selection
// matches when any selected item hits any of the three sets.
type CampaignAssociations struct {
	ShootingCategoryIDs []int64 `json:"shooting_category_ids"`
	ProductCategoryIDs  []int64 `json:"product_category_ids"`
	ItemIDs             []int64 `json:"item_ids"`
}

// Campaign is a time-boxed discount. StartDate and EndDate are calendar
// dates; only their year/month/day are significant.
type Campaign struct {
	ID            int64                `json:"id"`
	ShopID        int64                `json:"shop_id"`
	Name          string               `json:"name"`
	DiscountType  DiscountType         `json:"discount_type"`
	DiscountValue float64              `json:"discount_value"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	IsActive      bool                 `json:"is_active"`
	Associations  CampaignAssociations `json:"associations"`
}

// Resource limits enforced when rules are validated.
const (
	// MaxInOperatorValues bounds IN/NOT_IN lists saved through the admin API.
	MaxInOperatorValues = 64

	// MaxFieldNameLength bounds condition field names.
	MaxFieldNameLength = 128
)
