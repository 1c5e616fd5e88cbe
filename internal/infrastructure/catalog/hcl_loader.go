// Package catalog loads the product catalog from HCL and serves it from memory.
package catalog

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	domain "github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// catalogFile is the top level of a catalog.hcl file
type catalogFile struct {
	Products   []productBlock   `hcl:"product,block"`
	Surcharges []surchargeBlock `hcl:"surcharge,block"`
}

type productBlock struct {
	ID          string        `hcl:"id,label"`
	Title       string        `hcl:"title"`
	Description string        `hcl:"description,optional"`
	BasePrice   string        `hcl:"base_price"`
	Width       *rangeBlock   `hcl:"width,block"`
	Height      *rangeBlock   `hcl:"height,block"`
	Options     []optionBlock `hcl:"option,block"`
}

type rangeBlock struct {
	Min int `hcl:"min"`
	Max int `hcl:"max"`
}

type optionBlock struct {
	Name    string   `hcl:"name,label"`
	Values  []string `hcl:"values"`
	Default *string  `hcl:"default,optional"`
}

type surchargeBlock struct {
	Option string `hcl:"option,label"`
	Value  string `hcl:"value,label"`
	Amount string `hcl:"amount"`
}

// Definition is a decoded catalog file
type Definition struct {
	Products []domain.Product
	// Surcharges replaces the default surcharge table when non-empty
	Surcharges []strategy.Surcharge
}

// LoadFile parses and validates the catalog at path
func LoadFile(path string) (*Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL catalog source. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Definition, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse catalog: %w", diags)
	}

	var raw catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decode catalog: %w", diags)
	}

	def := &Definition{}
	seen := make(map[string]bool, len(raw.Products))
	for _, pb := range raw.Products {
		p, err := pb.toProduct()
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", pb.ID, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %q is defined more than once", p.ID)
		}
		seen[p.ID] = true
		def.Products = append(def.Products, p)
	}

	for _, sb := range raw.Surcharges {
		amount, err := decimal.NewFromString(sb.Amount)
		if err != nil {
			return nil, fmt.Errorf("surcharge %q %q: invalid amount %q", sb.Option, sb.Value, sb.Amount)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("surcharge %q %q: amount cannot be negative", sb.Option, sb.Value)
		}
		def.Surcharges = append(def.Surcharges, strategy.Surcharge{Option: sb.Option, Value: sb.Value, Amount: amount})
	}
	return def, nil
}

func (pb productBlock) toProduct() (domain.Product, error) {
	price, err := decimal.NewFromString(pb.BasePrice)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid base_price %q", pb.BasePrice)
	}

	p := domain.Product{
		ID:          pb.ID,
		Title:       pb.Title,
		Description: pb.Description,
		BasePrice:   price,
	}
	if pb.Width != nil {
		p.WidthRange = domain.DimensionRange{Min: pb.Width.Min, Max: pb.Width.Max}
	}
	if pb.Height != nil {
		p.HeightRange = domain.DimensionRange{Min: pb.Height.Min, Max: pb.Height.Max}
	}
	for _, ob := range pb.Options {
		opt := domain.ProductOption{Name: ob.Name, Values: ob.Values}
		if ob.Default != nil {
			opt.Default = *ob.Default
		}
		p.Options = append(p.Options, opt)
	}

	p.ApplyDefaultRanges()
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}
