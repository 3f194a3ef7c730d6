package core

// Category is an entry of the spending catalog.
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Catalog is an ordered, read-only list of categories.
type Catalog []Category

// Uncategorized collects expenses whose category key is not in the catalog.
var Uncategorized = Category{Key: "uncategorized", Name: "Outros", Color: "#969CB2"}

// DefaultCatalog returns a fresh copy of the built-in categories.
func DefaultCatalog() Catalog {
	return Catalog{
		{Key: "purchases", Name: "Compras", Color: "#5636D3"},
		{Key: "food", Name: "Alimentação", Color: "#FF872C"},
		{Key: "salary", Name: "Salário", Color: "#12A454"},
		{Key: "car", Name: "Carro", Color: "#E83F5B"},
		{Key: "leisure", Name: "Lazer", Color: "#26195C"},
		{Key: "studies", Name: "Estudos", Color: "#9C001A"},
	}
}

// Lookup returns the category with the given key.
func (c Catalog) Lookup(key string) (Category, bool) {
	for _, cat := range c {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}
