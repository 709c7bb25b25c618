// Package domain defines the core data types shared across the b3quant
// jobs: companies, price points, signal and portfolio series, and
// grid-search results.
package domain

import "time"

// DateLayout is the canonical YYYY-MM-DD layout used for all persisted dates.
const DateLayout = "2006-01-02"

// Company is one listed company from the B3 registry. CVMCode is the stable
// internal identifier; Codes holds the tradable ticker symbols.
type Company struct {
	CVMCode     string   // entity id (COD_CVM)
	Issuer      string   // issuing company short code (SIGLA)
	CompanyName string   // legal name (RAZAO_SOCIAL)
	TradingName string   // trading name (NOME_FANTASIA)
	CNPJ        string
	Segment     string
	Market      string
	ListingDate string // YYYY-MM-DD
	Status      string
	Activity    string // business activity description (ATIVIDADE)
	Website     string
	Codes       []string // tradable ticker symbols
	ISINs       []string
}

// PrimarySymbol returns the first trading code for the company, or "" when
// the company has no listed codes.
func (c Company) PrimarySymbol() string {
	if len(c.Codes) == 0 {
		return ""
	}
	return c.Codes[0]
}

// PricePoint is one row of the persisted price table. At most one
// adjusted close may exist per (EntityID, Date); on conflict the
// later-written row wins.
type PricePoint struct {
	EntityID string
	Date     time.Time // day precision, UTC
	AdjClose float64
}

// Day truncates t to day precision in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SignalPoint is one row of the derived signal series for a ticker.
// Signal is +1 when the short average is above the long average and -1
// otherwise. Position is the first difference of Signal, so it is nonzero
// only at a crossover: +2 bullish, -2 bearish.
type SignalPoint struct {
	Date     time.Time
	Price    float64
	ShortAvg float64
	LongAvg  float64
	Signal   int
	Position int
}

// PortfolioPoint is one row of the simulated portfolio series.
// Return is the percentage change of Total versus the previous row and is
// undefined (HasReturn false) for the first row.
type PortfolioPoint struct {
	Date      time.Time
	Price     float64
	Holdings  float64
	Cash      float64
	Total     float64
	Return    float64
	HasReturn bool
}

// Report summarizes a backtest as return/risk metrics. SharpeRatio is NaN
// when the annualized volatility is exactly zero.
type Report struct {
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
}

// BestParams is the window pair that maximized the Sharpe ratio for one
// ticker during a grid search.
type BestParams struct {
	EntityID    string
	Symbol      string
	ShortWindow int
	LongWindow  int
	SharpeRatio float64
}
