// Package carrier maps carrier identifiers to the strategy that reads
// their usage page.
package carrier

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/quantity"
)

// Supplier produces one FetchOutcome per call
type Supplier interface {
	ID() string
	Name() string
	// IsRealDataSupplier is false for placeholders that never fetch
	IsRealDataSupplier() bool
	Fetch(ctx context.Context) domain.FetchOutcome
}

// MarkerPolicy says how a page marker identifies the serving provider
type MarkerPolicy int

const (
	MarkerIgnore  MarkerPolicy = iota
	MarkerRequire              // page must contain Marker
	MarkerForbid               // page must not contain Marker
)

// Variant describes one scraped carrier page
type Variant struct {
	ID      string
	Name    string
	URL     string
	Aliases []string // operator names reported by the network

	Marker       string
	MarkerPolicy MarkerPolicy

	// Region is a CSS class narrowing where amounts are read; the
	// timestamp is always taken from the whole page.
	Region string
}

const (
	TelekomID  = "telekom"
	CongstarID = "congstar"

	datapassURL    = "https://datapass.de/"
	telekomMarker  = "Telekom Deutschland"
	usageRegionCSS = "volume"
)

// DefaultVariants are the carriers with a supported usage page.
// Both are served from the same portal and told apart by the marker.
func DefaultVariants() []Variant {
	return []Variant{
		{
			ID:           TelekomID,
			Name:         "Telekom",
			URL:          datapassURL,
			Aliases:      []string{"Telekom", "T-Mobile"},
			Marker:       telekomMarker,
			MarkerPolicy: MarkerRequire,
			Region:       usageRegionCSS,
		},
		{
			ID:           CongstarID,
			Name:         "congstar",
			URL:          datapassURL,
			Aliases:      []string{"congstar"},
			Marker:       telekomMarker,
			MarkerPolicy: MarkerForbid,
			Region:       usageRegionCSS,
		},
	}
}

// pageSupplier fetches and parses a Variant's page
type pageSupplier struct {
	v       Variant
	fetcher domain.Fetcher
	parser  quantity.Parser
	logger  *slog.Logger
}

func (p *pageSupplier) ID() string               { return p.v.ID }
func (p *pageSupplier) Name() string             { return p.v.Name }
func (p *pageSupplier) IsRealDataSupplier() bool { return true }

func (p *pageSupplier) Fetch(ctx context.Context) domain.FetchOutcome {
	start := time.Now()
	raw, err := p.fetcher.Fetch(ctx, p.v.URL)
	if err != nil {
		return domain.Failed(err)
	}

	// exhaustion wins over the provider check
	text := quantity.TextContent(raw)
	if strings.Contains(text, p.wastedMarker()) {
		return domain.Wasted()
	}

	switch p.v.MarkerPolicy {
	case MarkerRequire:
		if !strings.Contains(raw, p.v.Marker) {
			p.logger.Warn("page served by another provider", "carrier", p.v.ID)
			return domain.Failed(wrongProvider(p.v.ID))
		}
	case MarkerForbid:
		if strings.Contains(raw, p.v.Marker) {
			p.logger.Warn("page served by another provider", "carrier", p.v.ID)
			return domain.Failed(wrongProvider(p.v.ID))
		}
	}

	amounts := text
	if p.v.Region != "" {
		if region, ok := quantity.RegionText(raw, p.v.Region); ok {
			amounts = region
		}
	}

	snap, err := p.parser.Snapshot(amounts, text)
	if err != nil {
		p.logger.Warn("usage page parse failed", "carrier", p.v.ID, "error", err)
		return domain.Failed(err)
	}
	p.logger.Debug("usage page parsed", "carrier", p.v.ID, "percentage", snap.WastedPercentage, "elapsed", time.Since(start))
	return domain.Success(snap)
}

func (p *pageSupplier) wastedMarker() string {
	if p.parser.WastedMarker != "" {
		return p.parser.WastedMarker
	}
	return quantity.VolumeUsedUpMarker
}

// placeholder stands in for unknown or unchosen carriers
type placeholder struct {
	id      string
	outcome domain.FetchOutcome
}

func (p placeholder) ID() string                              { return p.id }
func (p placeholder) Name() string                            { return p.id }
func (p placeholder) IsRealDataSupplier() bool                { return false }
func (p placeholder) Fetch(context.Context) domain.FetchOutcome { return p.outcome }
