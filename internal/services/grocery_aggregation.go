package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExtrasToken is the provenance token used for manually added extras
const ExtrasToken = "Extras"

const provenanceSeparator = " & "

// AggregationKey identifies a distinct grocery list line
type AggregationKey struct {
	IngredientID uint
	UnitID       uint
}

// AggregatedLine is the derived content of one grocery list item
type AggregatedLine struct {
	Quantity    float64
	FromRecipes string
}

// RecomputeStats counts the item rows touched by one recompute run
type RecomputeStats struct {
	Inserted int
	Updated  int
	Deleted  int
}

// GroceryAggregator rebuilds the derived items of a grocery list from its
// planned recipes and extras
type GroceryAggregator interface {
	// Recompute runs a full recompute for a list owned by userID in its own transaction
	Recompute(ctx context.Context, listID, userID uint) error
}

type groceryAggregator struct {
	db *gorm.DB
}

// NewGroceryAggregator creates a new instance of GroceryAggregator
func NewGroceryAggregator(db *gorm.DB) GroceryAggregator {
	return &groceryAggregator{db: db}
}

func (a *groceryAggregator) Recompute(ctx context.Context, listID, userID uint) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list models.GroceryList
		err := tx.Where("id = ? AND user_id = ?", listID, userID).First(&list).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListNotOwnedOrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load grocery list: %w", err)
		}

		_, err = recomputeList(tx, list.ID)
		return err
	})
}

// recomputeList replaces the derived items of listID inside tx. Callers own the
// transaction and are responsible for the ownership check.
func recomputeList(tx *gorm.DB, listID uint) (RecomputeStats, error) {
	var stats RecomputeStats

	var plannedRecipes []models.PlannedRecipe
	if err := tx.Where("grocery_list_id = ?", listID).
		Preload("Recipe").
		Preload("Recipe.Ingredients").
		Preload("Recipe.Ingredients.Ingredient").
		Preload("Recipe.Ingredients.Unit").
		Order("id").
		Find(&plannedRecipes).Error; err != nil {
		return stats, fmt.Errorf("failed to load planned recipes: %w", err)
	}

	var plannedExtras []models.PlannedExtra
	if err := tx.Where("grocery_list_id = ?", listID).
		Preload("Ingredient").
		Preload("Unit").
		Order("id").
		Find(&plannedExtras).Error; err != nil {
		return stats, fmt.Errorf("failed to load planned extras: %w", err)
	}

	required := AggregatePlan(plannedRecipes, plannedExtras)

	var existing []models.GroceryListItem
	if err := tx.Where("grocery_list_id = ?", listID).Order("id").Find(&existing).Error; err != nil {
		return stats, fmt.Errorf("failed to load grocery list items: %w", err)
	}

	seen := make(map[AggregationKey]bool, len(existing))
	for i := range existing {
		item := &existing[i]
		key := AggregationKey{IngredientID: item.IngredientID, UnitID: item.UnitID}
		line, ok := required[key]
		if !ok {
			if err := tx.Delete(&models.GroceryListItem{}, item.ID).Error; err != nil {
				return stats, fmt.Errorf("failed to delete grocery list item: %w", err)
			}
			stats.Deleted++
			continue
		}
		seen[key] = true

		if item.Quantity == line.Quantity && item.FromRecipes == line.FromRecipes {
			continue
		}
		// is_checked is left out so it survives the update
		if err := tx.Model(item).Updates(map[string]interface{}{
			"quantity":     line.Quantity,
			"from_recipes": line.FromRecipes,
		}).Error; err != nil {
			return stats, fmt.Errorf("failed to update grocery list item: %w", err)
		}
		stats.Updated++
	}

	for _, key := range sortedKeys(required) {
		if seen[key] {
			continue
		}
		line := required[key]
		item := models.GroceryListItem{
			GroceryListID: listID,
			IngredientID:  key.IngredientID,
			UnitID:        key.UnitID,
			Quantity:      line.Quantity,
			FromRecipes:   line.FromRecipes,
			IsChecked:     false,
		}
		if err := tx.Create(&item).Error; err != nil {
			return stats, fmt.Errorf("failed to insert grocery list item: %w", err)
		}
		stats.Inserted++
	}

	log.WithFields(log.Fields{
		"grocery_list_id": listID,
		"planned_recipes": len(plannedRecipes),
		"planned_extras":  len(plannedExtras),
		"inserted":        stats.Inserted,
		"updated":         stats.Updated,
		"deleted":         stats.Deleted,
	}).Debug("Grocery list recomputed")

	return stats, nil
}

// AggregatePlan computes the required grocery lines for a set of planned
// recipes and extras. Planned recipes are expected to carry their recipe with
// ingredient lines, ingredients and units preloaded; lines with a missing
// reference are skipped.
func AggregatePlan(plannedRecipes []models.PlannedRecipe, plannedExtras []models.PlannedExtra) map[AggregationKey]AggregatedLine {
	quantities := make(map[AggregationKey]float64)
	sources := make(map[AggregationKey][]string)

	for _, planned := range plannedRecipes {
		if planned.Recipe == nil {
			continue
		}
		token := fmt.Sprintf("%dp %s", planned.Guests, planned.Recipe.Title)
		for _, line := range planned.Recipe.Ingredients {
			if line.Ingredient == nil || line.Unit == nil {
				continue
			}
			key := AggregationKey{IngredientID: line.IngredientID, UnitID: line.UnitID}
			quantities[key] += line.Quantity * float64(planned.Guests)
			sources[key] = append(sources[key], token)
		}
	}

	for _, extra := range plannedExtras {
		if extra.Ingredient == nil || extra.Unit == nil {
			continue
		}
		key := AggregationKey{IngredientID: extra.IngredientID, UnitID: extra.UnitID}
		quantities[key] += extra.Quantity
		if !containsToken(sources[key], ExtrasToken) {
			sources[key] = append(sources[key], ExtrasToken)
		}
	}

	lines := make(map[AggregationKey]AggregatedLine, len(quantities))
	for key, quantity := range quantities {
		lines[key] = AggregatedLine{
			Quantity:    roundQuantity(quantity),
			FromRecipes: renderProvenance(sources[key]),
		}
	}
	return lines
}

func renderProvenance(tokens []string) string {
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for t := range unique {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, provenanceSeparator)
}

func roundQuantity(q float64) float64 {
	return math.Round(q*100) / 100
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func sortedKeys(lines map[AggregationKey]AggregatedLine) []AggregationKey {
	keys := make([]AggregationKey, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].IngredientID != keys[j].IngredientID {
			return keys[i].IngredientID < keys[j].IngredientID
		}
		return keys[i].UnitID < keys[j].UnitID
	})
	return keys
}
