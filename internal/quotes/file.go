package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
)

// FileSource serves quotes from a JSON file holding an array of Quote objects.
// The file is re-read on every lookup so edits take effect without a restart.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Quote(_ context.Context, code string) (Quote, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to read quotes file: %w", err)
	}

	var quotes []Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return Quote{}, fmt.Errorf("failed to parse quotes file %s: %w", s.path, err)
	}

	for _, q := range quotes {
		if strings.EqualFold(q.Code, code) {
			q.Code = code
			q.Price = q.Price.Round(2)
			return q, nil
		}
	}
	return Quote{}, fmt.Errorf("%w: %s", apperrors.ErrQuoteNotFound, code)
}
