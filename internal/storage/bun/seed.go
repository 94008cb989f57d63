package bunrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/uptrace/bun"
)

type seedCategory struct {
	Name      string
	Icon      string
	Color     string
	SortOrder int
}

var defaultCategories = []seedCategory{
	{"Fruit & Veg", "apple", "#22c55e", 1},
	{"Dairy", "milk", "#3b82f6", 2},
	{"Meat & Fish", "beef", "#ef4444", 3},
	{"Bakery", "croissant", "#f59e0b", 4},
	{"Frozen", "snowflake", "#06b6d4", 5},
	{"Drinks", "cup-soda", "#8b5cf6", 6},
	{"Snacks", "cookie", "#f97316", 7},
	{"Household", "spray-can", "#64748b", 8},
	{"Personal Care", "heart-pulse", "#ec4899", 9},
	{"Tinned & Jars", "package", "#a855f7", 10},
	{"Pasta & Rice", "wheat", "#eab308", 11},
	{"Condiments", "flask-round", "#14b8a6", 12},
	{"Other", "tag", "#6b7280", 99},
}

// defaultItemMappings prime the auto-categorizer with common groceries so the
// first items people type already land in the right category.
var defaultItemMappings = map[string][]string{
	"Fruit & Veg": {
		"apple", "apples", "banana", "bananas", "orange", "oranges", "lemon", "lemons",
		"lime", "limes", "grapes", "strawberries", "blueberries", "raspberries",
		"tomato", "tomatoes", "potato", "potatoes", "onion", "onions", "garlic",
		"carrot", "carrots", "broccoli", "spinach", "lettuce", "cucumber", "peppers",
		"bell pepper", "mushrooms", "mushroom", "avocado", "avocados", "celery", "sweetcorn",
		"corn", "peas", "green beans", "courgette", "aubergine", "cabbage", "cauliflower",
		"spring onions", "leek", "leeks", "parsnip", "parsnips", "beetroot",
		"sweet potato", "sweet potatoes", "ginger", "chilli", "kiwi", "mango",
		"pineapple", "melon", "watermelon", "pear", "pears", "plum", "plums",
		"peach", "peaches", "cherries", "fruit", "veg", "vegetables", "salad",
	},
	"Dairy": {
		"milk", "semi-skimmed milk", "skimmed milk", "whole milk", "oat milk",
		"almond milk", "cheese", "cheddar", "mozzarella", "parmesan", "cream cheese",
		"butter", "cream", "double cream", "single cream", "sour cream",
		"yoghurt", "yogurt", "greek yoghurt", "eggs", "egg",
	},
	"Meat & Fish": {
		"chicken", "chicken breast", "chicken thighs", "beef", "mince", "steak",
		"pork", "pork chops", "bacon", "sausages", "sausage", "ham", "lamb",
		"turkey", "duck", "salmon", "tuna", "cod", "prawns", "fish", "fish fingers",
		"chicken nuggets", "burgers",
	},
	"Bakery": {
		"bread", "white bread", "brown bread", "wholemeal bread", "sourdough",
		"rolls", "bread rolls", "baguette", "croissant", "croissants", "muffins",
		"bagels", "bagel", "wraps", "tortillas", "pitta", "pitta bread",
		"crumpets", "pancakes", "scones",
	},
	"Frozen": {
		"frozen peas", "frozen chips", "ice cream", "frozen pizza", "frozen veg",
		"fish fingers", "frozen berries", "ice lollies", "frozen prawns",
	},
	"Drinks": {
		"water", "juice", "orange juice", "apple juice", "squash", "cola", "coke",
		"lemonade", "beer", "wine", "tea", "coffee", "hot chocolate",
	},
	"Snacks": {
		"crisps", "chocolate", "biscuits", "nuts", "popcorn", "cereal bars",
		"sweets", "cake", "cookies",
	},
	"Household": {
		"washing up liquid", "bin bags", "kitchen roll", "cling film", "tin foil",
		"sponges", "bleach", "cleaning spray", "laundry detergent", "fabric softener",
		"dishwasher tablets", "toilet roll", "toilet paper", "batteries", "light bulbs",
	},
	"Personal Care": {
		"shampoo", "conditioner", "shower gel", "soap", "toothpaste", "toothbrush",
		"deodorant", "razors", "tissues", "cotton buds", "plasters",
	},
	"Tinned & Jars": {
		"baked beans", "chopped tomatoes", "tinned tuna", "soup", "tinned soup",
		"jam", "honey", "peanut butter", "nutella", "olives", "pickles",
		"coconut milk", "tinned sweetcorn",
	},
	"Pasta & Rice": {
		"pasta", "spaghetti", "penne", "fusilli", "rice", "basmati rice",
		"noodles", "egg noodles", "couscous", "lasagne sheets",
	},
	"Condiments": {
		"ketchup", "mayonnaise", "mustard", "soy sauce", "vinegar",
		"olive oil", "vegetable oil", "salt", "black pepper", "sugar",
		"flour", "stock cubes", "gravy", "herbs", "spices", "chilli flakes",
		"paprika", "cumin", "oregano", "mixed herbs",
	},
}

// SeedDefaults inserts default categories and their keyword mappings on first
// boot. It is a no-op once defaults exist.
func SeedDefaults(ctx context.Context, db *bun.DB) error {
	count, err := db.NewSelect().
		Model((*domain.Category)(nil)).
		Where("is_default = ?", true).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count default categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	byName := map[string]*domain.Category{}
	for _, seed := range defaultCategories {
		category := &domain.Category{
			Name:      seed.Name,
			Icon:      seed.Icon,
			Color:     seed.Color,
			SortOrder: seed.SortOrder,
			IsDefault: true,
		}
		category.EnsureID()
		category.CreatedAt = now
		category.UpdatedAt = now
		if _, err := db.NewInsert().Model(category).Exec(ctx); err != nil {
			return fmt.Errorf("seed: insert category %s: %w", seed.Name, err)
		}
		byName[seed.Name] = category
	}

	return seedItemMappings(ctx, db, byName, now)
}

func seedItemMappings(ctx context.Context, db *bun.DB, categories map[string]*domain.Category, now time.Time) error {
	memCount, err := db.NewSelect().
		Model((*domain.ItemCategoryMemory)(nil)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count category memory: %w", err)
	}
	if memCount > 0 {
		return nil
	}

	var records []domain.ItemCategoryMemory
	for name, items := range defaultItemMappings {
		category, ok := categories[name]
		if !ok {
			continue
		}
		for _, item := range items {
			memory := domain.ItemCategoryMemory{
				ItemNameLower: strings.ToLower(item),
				CategoryID:    category.ID,
				UsageCount:    1,
			}
			memory.EnsureID()
			memory.CreatedAt = now
			memory.UpdatedAt = now
			records = append(records, memory)
		}
	}
	if len(records) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("seed: insert category memory: %w", err)
	}
	return nil
}
