package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shutterbook/simulator/internal/pricing"
	"github.com/shutterbook/simulator/internal/simulator"
	"github.com/shutterbook/simulator/internal/types"
)

// catalogFile is the offline catalog read by the simulate command.
type catalogFile struct {
	Categories []types.ProductCategory `json:"categories"`
	Items      []types.Item            `json:"items"`
	Campaigns  []types.Campaign        `json:"campaigns"`
}

var (
	simCatalogPath      string
	simShootingCategory int64
	simValues           string
	simSelected         []int64
	simDate             string
	simText             bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Price a form against a JSON catalog file without a database",
	Example: `  shutterbook simulate --catalog newborn.json --shooting-category 1 \
    --values '{"category_10": 101}' --select 101,111`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simCatalogPath, "catalog", "", "catalog JSON file (categories, items, campaigns)")
	simulateCmd.Flags().Int64Var(&simShootingCategory, "shooting-category", 0, "shooting category to price (0 uses the whole file)")
	simulateCmd.Flags().StringVar(&simValues, "values", "{}", "form answers as a JSON object")
	simulateCmd.Flags().Int64SliceVar(&simSelected, "select", nil, "selected item IDs")
	simulateCmd.Flags().StringVar(&simDate, "date", "", "price as of this date (YYYY-MM-DD, shop location); default today")
	simulateCmd.Flags().BoolVar(&simText, "text", false, "print a short text summary instead of JSON")
	_ = simulateCmd.MarkFlagRequired("catalog")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	location, err := cfg.Pricing.LoadLocation()
	if err != nil {
		return err
	}

	catalog, err := readCatalog(simCatalogPath)
	if err != nil {
		return err
	}

	var values types.FormValues
	if err := json.Unmarshal([]byte(simValues), &values); err != nil {
		return fmt.Errorf("invalid --values: %w", err)
	}

	now := time.Now().In(location)
	if simDate != "" {
		now, err = time.ParseInLocation("2006-01-02", simDate, location)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	categories, items := catalog.forShootingCategory(simShootingCategory)
	result := simulator.Compute(categories, items, catalog.Campaigns, values, simSelected, now)

	if simText {
		return printSummary(cmd, result)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func readCatalog(path string) (catalogFile, error) {
	var catalog catalogFile
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// forShootingCategory narrows the catalog; id 0 keeps everything.
func (c catalogFile) forShootingCategory(id int64) ([]types.ProductCategory, []types.Item) {
	if id == 0 {
		return c.Categories, c.Items
	}
	var categories []types.ProductCategory
	for _, cat := range c.Categories {
		if cat.ShootingCategoryID == id {
			categories = append(categories, cat)
		}
	}
	var items []types.Item
	for _, it := range c.Items {
		if it.ShootingCategoryID == id {
			items = append(items, it)
		}
	}
	return categories, items
}

func printSummary(cmd *cobra.Command, result *simulator.Result) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "pattern:  %s\n", result.Pattern)
	for _, s := range result.Sections {
		fmt.Fprintf(w, "section:  %s (%d items)\n", s.Category.Name, len(s.Items))
	}
	if len(result.DroppedItemIDs) > 0 {
		fmt.Fprintf(w, "dropped:  %v\n", result.DroppedItemIDs)
	}
	fmt.Fprintf(w, "subtotal: %s\n", pricing.FormatYen(result.Quote.Subtotal))
	if result.Quote.Campaign != nil {
		fmt.Fprintf(w, "discount: %s (%s)\n", pricing.FormatYen(result.Quote.Discount), result.Quote.Campaign.Name)
	}
	fmt.Fprintf(w, "tax:      %s\n", pricing.FormatYen(result.Quote.Tax))
	_, err := fmt.Fprintf(w, "total:    %s\n", pricing.FormatYen(result.Quote.Total))
	return err
}
