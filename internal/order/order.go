package order

import (
	"errors"
	"fmt"

	"github.com/ironsheep/form-omr/internal/layout"
	"github.com/ironsheep/form-omr/internal/omr"
)

// ErrExtraction is returned by Extract when handed a failed result.
var ErrExtraction = errors.New("extraction error")

// DefaultQuantity is the quantity of every extracted line.
const DefaultQuantity = 1

// Line is one order-line candidate.
type Line struct {
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

// Extract builds order lines from a successful processing result.
//
// Lines come out in the order items first appear in result.Marks, which is
// vocabulary order for engine output. Items with no selection mark, or an
// unmarked one, are skipped. Returns ErrExtraction if result is nil or
// unsuccessful.
func Extract(result *omr.ProcessingResult) ([]Line, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no processing result", ErrExtraction)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: processing failed: %s", ErrExtraction, result.Error)
	}

	type pair struct {
		quantity  *omr.Mark
		selection *omr.Mark
	}

	var items []string
	byItem := make(map[string]*pair)
	for i := range result.Marks {
		m := &result.Marks[i]
		p, ok := byItem[m.Item]
		if !ok {
			p = &pair{}
			byItem[m.Item] = p
			items = append(items, m.Item)
		}
		switch m.Type {
		case layout.Quantity:
			p.quantity = m
		case layout.Selection:
			p.selection = m
		}
	}

	lines := make([]Line, 0)
	for _, item := range items {
		p := byItem[item]
		if p.selection == nil || !p.selection.IsMarked {
			continue
		}
		confidence := p.selection.Confidence
		if p.quantity != nil {
			confidence = min(confidence, p.quantity.Confidence)
		}
		lines = append(lines, Line{
			ItemName:   item,
			Quantity:   DefaultQuantity,
			Confidence: confidence,
		})
	}
	return lines, nil
}
