package domain

import "fmt"

// WeightVector maps asset symbols to portfolio weights. Weights are not
// required to sum to 1 - callers decide whether they want a fully
// invested portfolio.
type WeightVector map[string]float64

func EqualWeights(symbols []string) WeightVector {
	w := WeightVector{}
	if len(symbols) == 0 {
		return w
	}
	eq := 1.0 / float64(len(symbols))
	for _, symbol := range symbols {
		w[symbol] = eq
	}
	return w
}

// Align orders the weights to match the given asset ordering. Symbols
// absent from the vector get weight 0; symbols in the vector that the
// model does not know are an error.
func (w WeightVector) Align(symbols []string) ([]float64, error) {
	known := map[string]bool{}
	for _, symbol := range symbols {
		known[symbol] = true
	}
	for symbol := range w {
		if !known[symbol] {
			return nil, fmt.Errorf("weight vector contains symbol '%s' not present in the fitted model", symbol)
		}
	}

	out := make([]float64, len(symbols))
	for i, symbol := range symbols {
		out[i] = w[symbol]
	}
	return out, nil
}
