package cache

import "CryptoPulse/internal/model"

// NoopCache never stores anything; used when no SQLite path is configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(_ Key) (model.PriceSeries, bool, error) {
	return model.PriceSeries{}, false, nil
}
func (n *NoopCache) Put(_ Key, _ model.PriceSeries) error { return nil }
func (n *NoopCache) Close() error                         { return nil }
