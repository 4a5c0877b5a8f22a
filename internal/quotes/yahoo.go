package quotes

import (
	"context"
	"fmt"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/yahoo"
)

// YahooSource looks instrument codes up on Yahoo Finance.
// The exchange suffix (".SA" for B3) is appended to every code.
type YahooSource struct {
	client yahoo.Client
	suffix string
}

// NewYahooSource creates a YahooSource.
func NewYahooSource(client yahoo.Client, suffix string) *YahooSource {
	return &YahooSource{client: client, suffix: suffix}
}

func (s *YahooSource) Quote(ctx context.Context, code string) (Quote, error) {
	q, err := s.client.LatestQuote(ctx, code+s.suffix)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", code, err)
	}
	return Quote{
		Code:      code,
		Name:      q.Name,
		Price:     q.Price,
		UpdatedAt: q.At,
	}, nil
}
