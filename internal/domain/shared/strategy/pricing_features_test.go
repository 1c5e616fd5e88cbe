package strategy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type pricingTestContext struct {
	basePrice  decimal.Decimal
	options    map[string]string
	remoteDown bool
	result     PricingResult
	err        error
}

func (p *pricingTestContext) reset() {
	p.basePrice = decimal.Zero
	p.options = map[string]string{}
	p.remoteDown = false
	p.result = PricingResult{}
	p.err = nil
}

func (p *pricingTestContext) aProductWithBasePrice(price string) error {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	p.basePrice = d
	return nil
}

func (p *pricingTestContext) optionIs(name, value string) error {
	p.options[name] = value
	return nil
}

func (p *pricingTestContext) remotePricingIsUnavailable() error {
	p.remoteDown = true
	return nil
}

func (p *pricingTestContext) iPriceAShade(width, height string) error {
	w, err := decimal.NewFromString(width)
	if err != nil {
		return err
	}
	h, err := decimal.NewFromString(height)
	if err != nil {
		return err
	}

	var s PricingStrategy = NewLocalPricingStrategy()
	if p.remoteDown {
		remote := newStubPricingStrategy(PricingResult{}, NewPricingUnavailableError(errors.New("HTTP 503")))
		s = NewResilientPricingStrategy(remote, nil, nil)
	}

	p.result, p.err = s.CalculatePrice(context.Background(), PricingContext{
		BasePrice: p.basePrice,
		Width:     w,
		Height:    h,
		Options:   p.options,
	})
	return nil
}

func (p *pricingTestContext) thePriceIs(price string) error {
	if p.err != nil {
		return fmt.Errorf("pricing failed: %w", p.err)
	}
	want, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	if !p.result.Price.Equal(want) {
		return fmt.Errorf("expected price %s, got %s", want, p.result.Price)
	}
	return nil
}

func (p *pricingTestContext) thePriceSourceIs(source string) error {
	if string(p.result.Source) != source {
		return fmt.Errorf("expected source %q, got %q", source, p.result.Source)
	}
	return nil
}

func (p *pricingTestContext) ruleWasApplied(rule string) error {
	for _, r := range p.result.AppliedRules {
		if r == rule {
			return nil
		}
	}
	return fmt.Errorf("rule %q not in %v", rule, p.result.AppliedRules)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a product with base price ([\d.]+)$`, tc.aProductWithBasePrice)
	ctx.Step(`^option "([^"]*)" is "([^"]*)"$`, tc.optionIs)
	ctx.Step(`^remote pricing is unavailable$`, tc.remotePricingIsUnavailable)

	ctx.Step(`^I price a ([\d.]+) by ([\d.]+) inch shade$`, tc.iPriceAShade)

	ctx.Step(`^the price is ([\d.]+)$`, tc.thePriceIs)
	ctx.Step(`^the price source is "([^"]*)"$`, tc.thePriceSourceIs)
	ctx.Step(`^rule "([^"]*)" was applied$`, tc.ruleWasApplied)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/local_pricing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
