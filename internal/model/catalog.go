package model

import (
	"fmt"
	"strings"
)

// Instrument is one entry of the supported crypto catalog.
type Instrument struct {
	Name   string // display name
	Ticker string // Yahoo Finance ticker
	Base   string // base asset symbol, used for exchange pairs
}

// Catalog lists the supported instruments in display order.
var Catalog = []Instrument{
	{Name: "Bitcoin (BTC)", Ticker: "BTC-USD", Base: "BTC"},
	{Name: "Ethereum (ETH)", Ticker: "ETH-USD", Base: "ETH"},
	{Name: "Tether (USDT)", Ticker: "USDT-USD", Base: "USDT"},
	{Name: "BNB", Ticker: "BNB-USD", Base: "BNB"},
	{Name: "Solana (SOL)", Ticker: "SOL-USD", Base: "SOL"},
	{Name: "XRP", Ticker: "XRP-USD", Base: "XRP"},
	{Name: "USDC", Ticker: "USDC-USD", Base: "USDC"},
	{Name: "Cardano (ADA)", Ticker: "ADA-USD", Base: "ADA"},
	{Name: "Dogecoin (DOGE)", Ticker: "DOGE-USD", Base: "DOGE"},
	{Name: "Avalanche (AVAX)", Ticker: "AVAX-USD", Base: "AVAX"},
	{Name: "Shiba Inu (SHIB)", Ticker: "SHIB-USD", Base: "SHIB"},
	{Name: "Polkadot (DOT)", Ticker: "DOT-USD", Base: "DOT"},
	{Name: "TRON (TRX)", Ticker: "TRX-USD", Base: "TRX"},
	{Name: "Toncoin (TON)", Ticker: "TON11419-USD", Base: "TON"},
	{Name: "Chainlink (LINK)", Ticker: "LINK-USD", Base: "LINK"},
	{Name: "Polygon (MATIC)", Ticker: "MATIC-USD", Base: "MATIC"},
	{Name: "Litecoin (LTC)", Ticker: "LTC-USD", Base: "LTC"},
	{Name: "Uniswap (UNI)", Ticker: "UNI7083-USD", Base: "UNI"},
	{Name: "Internet Computer (ICP)", Ticker: "ICP-USD", Base: "ICP"},
	{Name: "Stellar (XLM)", Ticker: "XLM-USD", Base: "XLM"},
}

// LookupInstrument finds an instrument by display name, Yahoo ticker or base symbol.
func LookupInstrument(key string) (Instrument, error) {
	k := strings.TrimSpace(key)
	for _, in := range Catalog {
		if strings.EqualFold(k, in.Ticker) || strings.EqualFold(k, in.Name) || strings.EqualFold(k, in.Base) {
			return in, nil
		}
	}
	return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownTicker, key)
}
