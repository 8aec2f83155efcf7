package tariff

import (
	"cmp"
	"fmt"
	"slices"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/types"
)

// Validation reasons.
const (
	ReasonRateNegative    = "tariff-rate-negative"
	ReasonTypeUnknown     = "tariff-type-unknown"
	ReasonRangeInverted   = "tariff-range-inverted"
	ReasonBoundNegative   = "tariff-bound-negative"
	ReasonRangeGap        = "tariff-range-gap"
	ReasonRangeOverlap    = "tariff-range-overlap"
	ReasonOpenBandNotLast = "tariff-open-band-not-last"
	ReasonLastBandNotOpen = "tariff-last-band-not-open"
)

const (
	axisDay    = "day"
	axisAmount = "amount"
)

// span is a range on one axis with an optional upper bound.
type span[T any] struct {
	from  T
	until *T
}

// axis describes how to order and step bounds of one axis.
type axis[T any] struct {
	name    string
	compare func(a, b T) int
	next    func(T) T
	format  func(T) string
}

var dayAxis = axis[int]{
	name:    axisDay,
	compare: cmp.Compare[int],
	next:    func(v int) int { return v + 1 },
	format:  func(v int) string { return fmt.Sprint(v) },
}

var amountAxis = axis[types.Money]{
	name:    axisAmount,
	compare: func(a, b types.Money) int { return a.Cmp(b) },
	next:    func(v types.Money) types.Money { return v.Add(types.MinorUnit) },
	format:  func(v types.Money) string { return v.StringFixed(types.CurrencyPlaces) },
}

// ValidateBands checks that bands submitted together for one owner tile the
// day axis and the amount axis: contiguous, non-overlapping, and with exactly
// one open-ended band on top. The first violation is returned.
func ValidateBands(bands []*Tariff) error {
	if len(bands) == 0 {
		return nil
	}

	days := make([]span[int], 0, len(bands))
	amounts := make([]span[types.Money], 0, len(bands))
	for i, b := range bands {
		if err := validateBand(i, b); err != nil {
			return err
		}
		days = append(days, span[int]{from: b.FromDay, until: b.UntilDay})
		amounts = append(amounts, span[types.Money]{from: b.FromAmount, until: b.UntilAmount})
	}

	if err := checkTiling(dayAxis, days); err != nil {
		return err
	}
	return checkTiling(amountAxis, amounts)
}

func validateBand(i int, b *Tariff) error {
	if !b.Type.Valid() {
		return apperror.NewValidation(ReasonTypeUnknown, "unknown tariff type").
			WithDetail("index", i).WithDetail("type", string(b.Type))
	}
	if b.Rate.IsNegative() {
		return apperror.NewValidation(ReasonRateNegative, "tariff rate must not be negative").
			WithDetail("index", i)
	}
	if b.FromDay < 0 || b.FromAmount.IsNegative() {
		return apperror.NewValidation(ReasonBoundNegative, "tariff lower bound must not be negative").
			WithDetail("index", i)
	}
	if b.UntilDay != nil && *b.UntilDay < b.FromDay {
		return apperror.NewValidation(ReasonRangeInverted, "day range upper bound is below lower bound").
			WithDetail("index", i).WithDetail("axis", axisDay)
	}
	if b.UntilAmount != nil && b.UntilAmount.LessThan(b.FromAmount) {
		return apperror.NewValidation(ReasonRangeInverted, "amount range upper bound is below lower bound").
			WithDetail("index", i).WithDetail("axis", axisAmount)
	}
	return nil
}

// checkTiling groups identical ranges, sorts them by lower bound and walks
// adjacent pairs.
func checkTiling[T any](ax axis[T], spans []span[T]) error {
	distinct := make([]span[T], 0, len(spans))
	for _, s := range spans {
		if !slices.ContainsFunc(distinct, func(d span[T]) bool { return sameSpan(ax, d, s) }) {
			distinct = append(distinct, s)
		}
	}

	slices.SortFunc(distinct, func(a, b span[T]) int {
		if c := ax.compare(a.from, b.from); c != 0 {
			return c
		}
		return compareUpper(ax, a.until, b.until)
	})

	for i := 1; i < len(distinct); i++ {
		prev, cur := distinct[i-1], distinct[i]
		if prev.until == nil {
			return rangeError(ax, ReasonOpenBandNotLast, "only the band with the greatest lower bound may be open-ended", prev)
		}
		expected := ax.next(*prev.until)
		switch c := ax.compare(cur.from, expected); {
		case c < 0:
			return rangeError(ax, ReasonRangeOverlap, "ranges overlap", cur).
				WithDetail("previousUntil", ax.format(*prev.until))
		case c > 0:
			return rangeError(ax, ReasonRangeGap, "ranges leave a gap", cur).
				WithDetail("previousUntil", ax.format(*prev.until))
		}
	}

	if last := distinct[len(distinct)-1]; last.until != nil {
		return rangeError(ax, ReasonLastBandNotOpen, "the band with the greatest lower bound must be open-ended", last)
	}
	return nil
}

func sameSpan[T any](ax axis[T], a, b span[T]) bool {
	return ax.compare(a.from, b.from) == 0 && compareUpper(ax, a.until, b.until) == 0
}

// compareUpper orders upper bounds with nil (open) greatest.
func compareUpper[T any](ax axis[T], a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return ax.compare(*a, *b)
}

func rangeError[T any](ax axis[T], code, message string, s span[T]) *apperror.AppError {
	err := apperror.NewValidation(code, message).
		WithDetail("axis", ax.name).
		WithDetail("from", ax.format(s.from))
	if s.until != nil {
		err = err.WithDetail("until", ax.format(*s.until))
	}
	return err
}
