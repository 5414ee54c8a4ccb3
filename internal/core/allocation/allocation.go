// Package allocation computes expense totals and per-participant contributions.
//
// All monetary arithmetic is float64 and no rounding is applied here; rounding
// for display is a boundary concern.
package allocation

import (
	"fmt"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// Totals carries an expense's subtotal and its grand total after tax and tip.
type Totals struct {
	Subtotal float64
	Total    float64
}

// applyAdjustment applies a tax or tip adjustment to a running total.
// A nil adjustment or nil value is the identity.
func applyAdjustment(current float64, adj *domain.Adjustment) (float64, error) {
	if adj == nil || adj.Value == nil {
		return current, nil
	}
	switch adj.Type {
	case domain.AdjustPercentage:
		return current * (1 + *adj.Value/100), nil
	case domain.AdjustAmount:
		return current + *adj.Value, nil
	default:
		return 0, fmt.Errorf("%w: unknown adjustment type %q", apperrors.ErrInvalidPolicy, adj.Type)
	}
}

// ComputeTotals calculates the subtotal and grand total of an expense.
// For a single-amount expense both equal the amount. For an itemized expense
// the subtotal is the sum of price x quantity over all items and the total
// applies the tax adjustment followed by the tip adjustment, each against the
// running total after prior adjustments.
func ComputeTotals(e *domain.Expense) (Totals, error) {
	switch e.Kind {
	case domain.KindSingle:
		if e.Amount == nil {
			return Totals{}, fmt.Errorf("%w: single expense has no amount", apperrors.ErrValidation)
		}
		return Totals{Subtotal: *e.Amount, Total: *e.Amount}, nil

	case domain.KindItemized:
		var subtotal float64
		for _, item := range e.Items {
			subtotal += item.Price * float64(item.Quantity)
		}
		total, err := applyAdjustment(subtotal, e.Tax)
		if err != nil {
			return Totals{}, err
		}
		total, err = applyAdjustment(total, e.Tip)
		if err != nil {
			return Totals{}, err
		}
		return Totals{Subtotal: subtotal, Total: total}, nil

	default:
		return Totals{}, fmt.Errorf("%w: unknown expense kind %q", apperrors.ErrInvalidPolicy, e.Kind)
	}
}

// ComputeContribution calculates how much one participant owes towards an
// expense. It returns 0 for a user who is not in the participant list.
//
// For itemized expenses, items earmarked for specific users are costed at
// price x quantity x taxRatio, removed from the shared remainder, and split
// equally among exactly their earmarked users. The remainder is then divided
// according to the expense's split policy.
func ComputeContribution(e *domain.Expense, totals Totals, userID string) (float64, error) {
	if !e.HasParticipant(userID) {
		return 0, nil
	}

	if e.Kind == domain.KindSingle {
		return remainingContribution(e, totals.Total, userID)
	}

	// Ratio that inflates each item's cost by its share of tax and tip.
	// A zero subtotal would divide by zero; treat it as ratio 1.
	taxRatio := 1.0
	if totals.Subtotal != 0 {
		taxRatio = totals.Total / totals.Subtotal
	}

	var personal float64
	remaining := totals.Total
	for _, item := range e.Items {
		if len(item.Users) == 0 {
			continue
		}
		itemCost := item.Price * float64(item.Quantity) * taxRatio
		remaining -= itemCost
		if containsString(item.Users, userID) {
			personal += itemCost / float64(len(item.Users))
		}
	}

	shared, err := remainingContribution(e, remaining, userID)
	if err != nil {
		return 0, err
	}
	return shared + personal, nil
}

// remainingContribution divides a (possibly reduced) total among participants
// according to the expense's split policy.
func remainingContribution(e *domain.Expense, amount float64, userID string) (float64, error) {
	switch e.Split {
	case domain.SplitIndividually:
		return amount, nil

	case domain.SplitEqually:
		return amount / float64(len(e.Users)), nil

	case domain.SplitProportionally:
		var myWage, totalWages float64
		for _, u := range e.Users {
			totalWages += u.Wage
			if u.UserID == userID {
				myWage = u.Wage
			}
		}
		return amount * (myWage / totalWages), nil

	case domain.SplitCustom:
		var myWeight, totalWeights float64
		for _, u := range e.Users {
			if u.Weight == nil {
				return 0, fmt.Errorf("%w: user %s has no weight", apperrors.ErrMissingWeight, u.UserID)
			}
			totalWeights += *u.Weight
			if u.UserID == userID {
				myWeight = *u.Weight
			}
		}
		return amount * (myWeight / totalWeights), nil

	default:
		return 0, fmt.Errorf("%w: unknown split policy %q", apperrors.ErrInvalidPolicy, e.Split)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
