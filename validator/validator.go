// Package validator turns a token list into a typed (Order, OpCode)
// pair, or rejects it with a diagnostic.
package validator

import (
	"fmt"

	"github.com/orderflow/matchcore/model"
)

// Validate parses tokens into a model.Message. On success ok is true.
// On failure ok is false and diag explains why, for the caller to route
// to the Logger's err channel; no order is produced in that case.
func Validate(tokens []string) (msg model.Message, ok bool, diag string) {
	if len(tokens) == 0 {
		return model.Message{}, false, "empty message"
	}

	switch tokens[0] {
	case "0":
		return validateAdd(tokens)
	case "1":
		return validateCancel(tokens)
	default:
		return model.Message{}, false, fmt.Sprintf("unknown op tag %q", tokens[0])
	}
}

func validateAdd(tokens []string) (model.Message, bool, string) {
	if len(tokens) != 5 {
		return model.Message{}, false, fmt.Sprintf("add requires 5 tokens, got %d", len(tokens))
	}

	id, err := parseUint64(tokens[1])
	if err != nil {
		return model.Message{}, false, fmt.Sprintf("invalid order_id %q: %v", tokens[1], err)
	}

	side, err := parseSide(tokens[2])
	if err != nil {
		return model.Message{}, false, fmt.Sprintf("invalid side %q: %v", tokens[2], err)
	}

	qty, err := parseQuantity(tokens[3])
	if err != nil {
		return model.Message{}, false, fmt.Sprintf("invalid quantity %q: %v", tokens[3], err)
	}

	price, err := model.ParsePrice(tokens[4])
	if err != nil || price <= 0 {
		return model.Message{}, false, fmt.Sprintf("invalid price %q", tokens[4])
	}

	return model.Message{
		Op: model.OpAdd,
		Order: model.Order{
			ID:       id,
			Quantity: qty,
			Price:    price,
			Side:     side,
		},
	}, true, ""
}

func validateCancel(tokens []string) (model.Message, bool, string) {
	if len(tokens) != 2 {
		return model.Message{}, false, fmt.Sprintf("cancel requires 2 tokens, got %d", len(tokens))
	}
	id, err := parseUint64(tokens[1])
	if err != nil {
		return model.Message{}, false, fmt.Sprintf("invalid order_id %q: %v", tokens[1], err)
	}
	return model.Message{Op: model.OpCancel, Order: model.Order{ID: id}}, true, ""
}

func parseSide(s string) (model.Side, error) {
	switch s {
	case "0":
		return model.Buy, nil
	case "1":
		return model.Sell, nil
	default:
		return 0, fmt.Errorf("side must be 0 (buy) or 1 (sell)")
	}
}

// parseQuantity rejects a leading '-' explicitly before the unsigned
// parse, so a negative literal gets a negative-quantity diagnostic
// rather than parseUint64's generic non-digit rejection.
func parseQuantity(s string) (uint64, error) {
	if len(s) > 0 && s[0] == '-' {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	v, err := parseUint64(s)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}
	return v, nil
}

// parseUint64 parses a base-10 unsigned integer; any non-digit
// character is a rejection (including a leading '-' or '+').
func parseUint64(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	var v uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit character %q", c)
		}
		d := uint64(c - '0')
		if v > (^uint64(0)-d)/10 {
			return 0, fmt.Errorf("overflow")
		}
		v = v*10 + d
	}
	return v, nil
}
