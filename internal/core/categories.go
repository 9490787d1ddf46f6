package core

// DefaultCategories is the authoritative reference list shared by the
// add-expense, manage-expense and report views. The ids match the rows the
// backend seeds on first migration.
var DefaultCategories = []Category{
	{ID: 5, Name: "Entertainment"},
	{ID: 9, Name: "Other"},
	{ID: 10, Name: "Food"},
	{ID: 11, Name: "Travel"},
	{ID: 12, Name: "Health"},
	{ID: 13, Name: "Utilities"},
	{ID: 14, Name: "Shopping"},
	{ID: 15, Name: "Groceries"},
	{ID: 16, Name: "Education"},
	{ID: 17, Name: "Rent"},
}

// CategoryNameByID resolves a reference category id to its name. The
// second return is false for ids outside the reference set.
func CategoryNameByID(id int64) (string, bool) {
	for _, c := range DefaultCategories {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// CategoryByName looks a reference category up by its exact name.
func CategoryByName(name string) (Category, bool) {
	for _, c := range DefaultCategories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
