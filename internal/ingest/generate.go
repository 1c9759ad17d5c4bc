package ingest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"salesreport/internal/core"
)

const DefaultRows = 100

// Catalog lists the categories and products synthetic data is drawn from.
type Catalog struct {
	Categories []CatalogCategory `yaml:"categories"`
}

type CatalogCategory struct {
	Name     string   `yaml:"name"`
	Products []string `yaml:"products"`
}

func DefaultCatalog() Catalog {
	return Catalog{Categories: []CatalogCategory{
		{Name: "Electronics", Products: []string{"Phone", "Laptop", "Tablet", "Headphones", "Smartwatch"}},
		{Name: "Books", Products: []string{"Fiction", "Non-Fiction", "Comics", "Biography", "Mystery"}},
		{Name: "Clothing", Products: []string{"T-shirt", "Jeans", "Jacket", "Shirt", "Dress"}},
		{Name: "Toys", Products: []string{"Action Figure", "Puzzle", "Board Game", "Doll", "RC Car"}},
		{Name: "Home Appliances", Products: []string{"Blender", "Microwave", "Toaster", "Refrigerator", "Washing Machine"}},
	}}
}

func (c Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("catalog has no categories")
	}
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category %d has no name", i)
		}
		if len(cat.Products) == 0 {
			return fmt.Errorf("category %q has no products", cat.Name)
		}
		for _, p := range cat.Products {
			if p == "" {
				return fmt.Errorf("category %q has an empty product name", cat.Name)
			}
		}
	}
	return nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Generate produces n synthetic records with product ids 1..n.
func Generate(rng *rand.Rand, n int, catalog Catalog) []core.ProductRecord {
	if len(catalog.Categories) == 0 {
		catalog = DefaultCatalog()
	}
	out := make([]core.ProductRecord, 0, n)
	for i := 1; i <= n; i++ {
		cat := catalog.Categories[rng.Intn(len(catalog.Categories))]
		name := cat.Products[rng.Intn(len(cat.Products))]
		price := decimal.NewFromFloat(10 + rng.Float64()*990).Round(2)
		qty := int64(rng.Intn(500) + 1)
		rating := math.Round((1+rng.Float64()*4)*10) / 10
		reviews := int64(rng.Intn(1000) + 1)
		out = append(out, core.NewProductRecord(int64(i), name, cat.Name, price, qty, rating, reviews))
	}
	return out
}
