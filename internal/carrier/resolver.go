package carrier

import (
	"log/slog"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/quantity"
)

// Resolver is the closed dispatch table from carrier id to Supplier
type Resolver struct {
	suppliers   map[string]Supplier
	order       []Supplier
	variants    []Variant
	notSelected Supplier
	logger      *slog.Logger
}

// NewResolver registers DefaultVariants behind fetcher
func NewResolver(fetcher domain.Fetcher, logger *slog.Logger) *Resolver {
	return NewResolverWithVariants(fetcher, DefaultVariants(), quantity.Parser{}, logger)
}

// NewResolverWithVariants registers the given variants
func NewResolverWithVariants(fetcher domain.Fetcher, variants []Variant, parser quantity.Parser, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		suppliers:   make(map[string]Supplier, len(variants)),
		variants:    variants,
		notSelected: placeholder{id: domain.CarrierNotSelectedID, outcome: domain.CarrierNotSelected()},
		logger:      logger,
	}
	for _, v := range variants {
		s := &pageSupplier{v: v, fetcher: fetcher, parser: parser, logger: logger}
		r.suppliers[v.ID] = s
		r.order = append(r.order, s)
	}
	return r
}

// Resolve returns the Supplier for an exact id. Unknown ids get a
// placeholder that reports CarrierUnavailable without fetching.
func (r *Resolver) Resolve(id string) Supplier {
	if id == domain.CarrierNotSelectedID {
		return r.notSelected
	}
	if s, ok := r.suppliers[id]; ok {
		return s
	}
	r.logger.Debug("carrier not supported", "carrier", id)
	return placeholder{id: id, outcome: domain.CarrierUnavailable()}
}

// Suppliers lists the real suppliers in registration order
func (r *Resolver) Suppliers() []Supplier {
	out := make([]Supplier, len(r.order))
	copy(out, r.order)
	return out
}

// Suggest ranks real suppliers by fuzzy match on their display name
func (r *Resolver) Suggest(query string) []Supplier {
	if strings.TrimSpace(query) == "" {
		return r.Suppliers()
	}
	names := make([]string, len(r.order))
	for i, s := range r.order {
		names[i] = strings.ToLower(s.Name())
	}
	matches := sfuzzy.Find(strings.ToLower(query), names)
	out := make([]Supplier, 0, len(matches))
	for _, m := range matches {
		out = append(out, r.order[m.Index])
	}
	return out
}

// Detect turns an operator name reported by the network into a carrier
// id. Empty names mean nothing was chosen; names matching no alias are
// returned as-is so they resolve to CarrierUnavailable.
func (r *Resolver) Detect(operator string) string {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return domain.CarrierNotSelectedID
	}
	best, bestDist := "", -1
	for _, v := range r.variants {
		if strings.EqualFold(operator, v.ID) {
			return v.ID
		}
		for _, alias := range v.Aliases {
			if !fuzzy.MatchNormalizedFold(alias, operator) {
				continue
			}
			d := fuzzy.LevenshteinDistance(strings.ToLower(alias), strings.ToLower(operator))
			if bestDist < 0 || d < bestDist {
				best, bestDist = v.ID, d
			}
		}
	}
	if best == "" {
		return operator
	}
	return best
}
