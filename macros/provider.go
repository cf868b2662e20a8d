package macros

import "strconv"

// MacroKeyAuctionPrice is the OpenRTB clearing price macro DSPs place in their creative markup.
const MacroKeyAuctionPrice = "${AUCTION_PRICE}"

// Provider resolves macro values for a single winning bid.
type Provider interface {
	// GetMacro returns the macro value for the given macro key and whether the key is known.
	GetMacro(key string) (string, bool)
	// Keys lists every macro this provider can resolve.
	Keys() []string
}

type auctionProvider struct {
	macros map[string]string
}

// NewAuctionProvider builds a provider for the winning bid's price. A nil price resolves to 0.0000.
func NewAuctionProvider(price *float64) Provider {
	return &auctionProvider{
		macros: map[string]string{
			MacroKeyAuctionPrice: FormatPrice(price),
		},
	}
}

func (p *auctionProvider) GetMacro(key string) (string, bool) {
	v, ok := p.macros[key]
	return v, ok
}

func (p *auctionProvider) Keys() []string {
	return []string{MacroKeyAuctionPrice}
}

// FormatPrice renders a price as a fixed-point decimal with exactly four fractional digits.
func FormatPrice(price *float64) string {
	if price == nil {
		return "0.0000"
	}
	return strconv.FormatFloat(*price, 'f', 4, 64)
}
