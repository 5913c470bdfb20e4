// Package collector loads market snapshots for evaluation.
package collector

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/pkg/retrier"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const quoteCurrency = "USD"

// SnapshotSource produces the market snapshots to evaluate.
type SnapshotSource interface {
	Snapshots(ctx context.Context) ([]domain.AssetSnapshot, error)
}

// listingEntry one asset in CoinMarketCap listing shape. Numbers are kept as
// strings and parsed into decimals, so both quoted and bare values are accepted.
type listingEntry struct {
	ID                string                  `yaml:"id"`
	Name              string                  `yaml:"name"`
	Symbol            string                  `yaml:"symbol"`
	Rank              string                  `yaml:"cmc_rank"`
	CirculatingSupply string                  `yaml:"circulating_supply"`
	TotalSupply       string                  `yaml:"total_supply"`
	MaxSupply         string                  `yaml:"max_supply"`
	InfiniteSupply    bool                    `yaml:"infinite_supply"`
	LastUpdated       string                  `yaml:"last_updated"`
	Quote             map[string]listingQuote `yaml:"quote"`
}

type listingQuote struct {
	Price            string `yaml:"price"`
	Volume24h        string `yaml:"volume_24h"`
	MarketCap        string `yaml:"market_cap"`
	PercentChange1h  string `yaml:"percent_change_1h"`
	PercentChange24h string `yaml:"percent_change_24h"`
	PercentChange7d  string `yaml:"percent_change_7d"`
	LastUpdated      string `yaml:"last_updated"`
}

// FileCollector reads snapshots from a YAML or JSON listing file.
// Reads are retried, since exporters may be rewriting the file.
type FileCollector struct {
	logger  *zap.Logger
	path    string
	retrier *retrier.Retrier
}

// FileOption configures the FileCollector.
type FileOption func(*FileCollector)

// WithRetrier replaces the default read retrier.
func WithRetrier(r *retrier.Retrier) FileOption {
	return func(c *FileCollector) {
		c.retrier = r
	}
}

// NewFileCollector creates a FileCollector for path.
func NewFileCollector(logger *zap.Logger, path string, opts ...FileOption) *FileCollector {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &FileCollector{logger: logger, path: path}
	c.retrier = retrier.New(
		retrier.WithRetryIf(func(err error) bool {
			return !errors.Is(err, os.ErrNotExist)
		}),
		retrier.WithOnRetry(func(attempt int, err error) {
			c.logger.Warn("retrying listing read",
				zap.String("path", c.path),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}),
	)
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshots reads and parses the listing file.
func (c *FileCollector) Snapshots(ctx context.Context) ([]domain.AssetSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshots, err := retrier.DoWithData(c.retrier, ctx, c.read)
	if err != nil {
		return nil, err
	}

	c.logger.Info("listing loaded", zap.String("path", c.path), zap.Int("assets", len(snapshots)))

	return snapshots, nil
}

func (c *FileCollector) read(context.Context) ([]domain.AssetSnapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read listing %s", c.path)
	}

	snapshots, err := ParseListing(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse listing %s", c.path)
	}

	return snapshots, nil
}

// ParseListing decodes a listing: either a bare sequence of entries or a mapping
// with the entries under "data", as returned by the listings endpoint.
func ParseListing(data []byte) ([]domain.AssetSnapshot, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "invalid listing document")
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.MappingNode {
		node = mappingValue(node, "data")
		if node == nil {
			return nil, errors.New("listing mapping has no data field")
		}
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errors.Errorf("listing must be a sequence of assets, got yaml kind %d", node.Kind)
	}

	var entries []listingEntry
	if err := node.Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode listing entries")
	}

	snapshots := make([]domain.AssetSnapshot, 0, len(entries))
	for i, e := range entries {
		s, err := e.snapshot()
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d (%s)", i, e.Symbol)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func (e listingEntry) snapshot() (domain.AssetSnapshot, error) {
	quote, ok := e.Quote[quoteCurrency]
	if !ok {
		return domain.AssetSnapshot{}, errors.Errorf("missing %s quote", quoteCurrency)
	}

	var (
		s   = domain.AssetSnapshot{Name: e.Name, Symbol: e.Symbol, InfiniteSupply: e.InfiniteSupply}
		err error
	)

	if s.ID, err = parseInt("id", e.ID); err != nil {
		return s, err
	}
	if s.Rank, err = parseInt("cmc_rank", e.Rank); err != nil {
		return s, err
	}

	decimals := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"price", quote.Price, &s.Price},
		{"volume_24h", quote.Volume24h, &s.Volume24h},
		{"market_cap", quote.MarketCap, &s.MarketCap},
		{"circulating_supply", e.CirculatingSupply, &s.CirculatingSupply},
		{"total_supply", e.TotalSupply, &s.TotalSupply},
	}
	for _, d := range decimals {
		if *d.dst, err = parseDecimal(d.field, d.raw); err != nil {
			return s, err
		}
	}

	if e.MaxSupply != "" {
		maxSupply, err := parseDecimal("max_supply", e.MaxSupply)
		if err != nil {
			return s, err
		}
		s.MaxSupply = &maxSupply
	}

	floats := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{"percent_change_1h", quote.PercentChange1h, &s.PercentChange1h},
		{"percent_change_24h", quote.PercentChange24h, &s.PercentChange24h},
		{"percent_change_7d", quote.PercentChange7d, &s.PercentChange7d},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(f.field, f.raw); err != nil {
			return s, err
		}
	}

	updated := e.LastUpdated
	if updated == "" {
		updated = quote.LastUpdated
	}
	if updated != "" {
		if s.LastUpdated, err = time.Parse(time.RFC3339, updated); err != nil {
			return s, errors.Wrapf(err, "invalid last_updated %q", updated)
		}
	}

	return s, nil
}

func parseInt(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", field, raw)
	}
	return v, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid %s %q", field, raw)
	}
	return v, nil
}

func parseFloat(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", field, raw)
	}
	return v, nil
}
