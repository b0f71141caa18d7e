package prize

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Size is the number of entries every prize table must have.
const Size = 9

// NoWinLabel is the losing entry of the default table.
const NoWinLabel = "아쉽지만, 꽝!"

var (
	ErrTableSize      = fmt.Errorf("prize table must have exactly %d entries", Size)
	ErrDuplicateLabel = errors.New("prize table has duplicate labels")
	ErrNoWinCount     = errors.New("prize table must contain the no-win label exactly once")
	ErrFallbackIndex  = errors.New("fallback index out of range")
)

// Table is the ordered list of prize labels a draw picks from.
type Table struct {
	Labels []string
	// NoWin is the label that classifies a draw as a loss.
	NoWin string
	// FallbackIndex is used when no entropy is available.
	FallbackIndex int
}

// DefaultTable returns the promotion's built-in table. The fallback is the
// no-win entry.
func DefaultTable() Table {
	return Table{
		Labels: []string{
			"전체 금액 10% 할인",
			"3만원 사케 증정",
			"5만원 요리 서비스",
			"명품 고급 젓가락 세트",
			"오리지널 블렌딩 호지차",
			"특별한 소금 세트",
			"편백나무(히노키) 큐브",
			NoWinLabel,
			"일본 고급 츠케모노",
		},
		NoWin:         NoWinLabel,
		FallbackIndex: 7,
	}
}

// Validate checks the table shape.
func (t Table) Validate() error {
	if len(t.Labels) != Size {
		return fmt.Errorf("%w: got %d", ErrTableSize, len(t.Labels))
	}
	if len(lo.Uniq(t.Labels)) != len(t.Labels) {
		return fmt.Errorf("%w: %v", ErrDuplicateLabel, lo.FindDuplicates(t.Labels))
	}
	if lo.Count(t.Labels, t.NoWin) != 1 {
		return fmt.Errorf("%w: %q", ErrNoWinCount, t.NoWin)
	}
	if t.FallbackIndex < 0 || t.FallbackIndex >= len(t.Labels) {
		return fmt.Errorf("%w: %d", ErrFallbackIndex, t.FallbackIndex)
	}
	return nil
}

// IsWin reports whether label is a winning entry.
func (t Table) IsWin(label string) bool {
	return label != t.NoWin
}

// Winning returns the reward labels in table order.
func (t Table) Winning() []string {
	return lo.Filter(t.Labels, func(l string, _ int) bool { return t.IsWin(l) })
}
