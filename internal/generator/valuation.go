package generator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/schedule"
)

// Power-law model parameters.
const (
	powerLawCoefficient = 1e-17
	powerLawExponent    = 5.83
)

// Epoch is the genesis date the power-law model counts days from.
var Epoch = time.Date(2009, time.January, 3, 0, 0, 0, 0, time.UTC)

// PowerLawValue is the modelled value after days since Epoch.
func PowerLawValue(days int) float64 {
	return powerLawCoefficient * math.Pow(float64(days), powerLawExponent)
}

// DaysSinceEpoch counts whole calendar days between Epoch and the UTC date
// of t. Dates on or before Epoch yield a value <= 0.
func DaysSinceEpoch(t time.Time) int {
	u := t.UTC()
	date := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int(date.Sub(Epoch).Hours() / 24)
}

// Deviation is the percentage by which value exceeds price.
func Deviation(value, price float64) float64 {
	return 100 - price/value*100
}

// ValuationLine renders the base sentence for a modelled value.
func ValuationLine(value float64) string {
	return fmt.Sprintf("Value of #BTC for the #powerlaw today would be: %.2f #USD", value)
}

// DeviationLine renders the signed deviation against the market price.
func DeviationLine(value, price float64) string {
	return fmt.Sprintf("%+.2f%% of actual", Deviation(value, price))
}

// Valuation posts the power-law value for today, compared against the
// market price when one is available.
type Valuation struct {
	base
	clock  schedule.Clock
	oracle PriceOracle
	symbol string
}

// NewValuation wires a valuation generator. It never produces images.
func NewValuation(sender channel.Sender, clock schedule.Clock, oracle PriceOracle, symbol string, log logger.Logger) *Valuation {
	if symbol == "" {
		symbol = "BTC"
	}
	return &Valuation{
		base:   newBase("Valuation", false, sender, log),
		clock:  clock,
		oracle: oracle,
		symbol: symbol,
	}
}

// Generate computes the modelled value and, if possible, the deviation.
func (g *Valuation) Generate(ctx context.Context) Result {
	now := g.clock.Now()
	days := DaysSinceEpoch(now)
	if days <= 0 {
		return g.reject("date precedes model epoch", logger.Time("date", now))
	}

	value := PowerLawValue(days)
	content := ValuationLine(value)
	g.log.Debug("valuation computed", logger.Int("days", days), logger.Float64("value", value))

	price := g.oracle.Price(ctx, g.symbol)
	if price <= 0 {
		return g.degraded(domain.NewPost(content, nil), "price unavailable")
	}

	content += "\n" + DeviationLine(value, price)
	g.log.Debug("price compared", logger.Float64("price", price))
	return g.ready(domain.NewPost(content, nil))
}
