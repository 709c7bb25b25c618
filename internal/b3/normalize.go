package b3

import (
	"strings"
	"time"

	"b3quant/internal/domain"
)

// The registry reports companies without a real listing date as 31/12/9999.
// That sentinel is replaced with a far-future but representable date.
const (
	listingDateSentinel = "31/12/9999"
	listingDateFarAway  = "2100-01-01"
	listingDateLayout   = "02/01/2006"
)

// Normalize merges a listing row and its detail record into a domain.Company
// with canonical field names. A nil detail yields a company without codes,
// ISINs, activity, or website.
func Normalize(l Listing, d *Detail) domain.Company {
	c := domain.Company{
		CVMCode:     l.CodeCVM.String(),
		Issuer:      strings.TrimSpace(l.IssuingCompany),
		CompanyName: strings.TrimSpace(l.CompanyName),
		TradingName: strings.TrimSpace(l.TradingName),
		CNPJ:        strings.TrimSpace(l.CNPJ),
		Segment:     l.Segment,
		Market:      l.Market,
		Status:      l.Status,
		ListingDate: normalizeListingDate(l.DateListing),
	}

	if d != nil {
		c.Activity = strings.TrimSpace(d.Activity)
		c.Website = strings.TrimSpace(d.Website)
		for _, oc := range d.OtherCodes {
			if code := strings.TrimSpace(oc.Code); code != "" {
				c.Codes = append(c.Codes, code)
			}
			if isin := strings.TrimSpace(oc.ISIN); isin != "" {
				c.ISINs = append(c.ISINs, isin)
			}
		}
	}
	return c
}

// normalizeListingDate converts the registry's DD/MM/YYYY format to
// YYYY-MM-DD, mapping the 9999 sentinel to 2100-01-01. Unparseable input is
// passed through unchanged.
func normalizeListingDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s == listingDateSentinel {
		return listingDateFarAway
	}
	t, err := time.Parse(listingDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(domain.DateLayout)
}
