package enums

import "fmt"

// Category groups grocery items on the shelf.
type Category string

const (
	CategoryProduce      Category = "produce"
	CategoryDairy        Category = "dairy"
	CategoryMeat         Category = "meat"
	CategorySeafood      Category = "seafood"
	CategoryBakery       Category = "bakery"
	CategoryPantry       Category = "pantry"
	CategoryFrozen       Category = "frozen"
	CategoryBeverages    Category = "beverages"
	CategorySnacks       Category = "snacks"
	CategoryHousehold    Category = "household"
	CategoryPersonalCare Category = "personal-care"
	CategoryOther        Category = "other"
)

var validCategories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryMeat,
	CategorySeafood,
	CategoryBakery,
	CategoryPantry,
	CategoryFrozen,
	CategoryBeverages,
	CategorySnacks,
	CategoryHousehold,
	CategoryPersonalCare,
	CategoryOther,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

func Categories() []Category {
	return append([]Category(nil), validCategories...)
}
