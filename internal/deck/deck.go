// Package deck provides the playing-card faces shown on the card-select and
// reveal screens. Faces are decorative: which face sits under a number has no
// influence on the prize.
package deck

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"luckycard/internal/rng"
)

var ErrDealTooLarge = errors.New("deal exceeds deck size")

type Suit string

const (
	Diamond Suit = "diamond"
	Heart   Suit = "heart"
	Spade   Suit = "spade"
	Club    Suit = "club"
	Joker   Suit = "joker"
)

// Card is one face of the deck.
type Card struct {
	ID     int    `json:"id"`
	Value  string `json:"value"`
	Suit   Suit   `json:"suit"`
	Symbol string `json:"symbol"`
	Color  string `json:"color"`
}

// Numbered is a dealt card with its 1-based position in the hand.
type Numbered struct {
	Card
	Number int `json:"number"`
}

type suitFace struct {
	suit   Suit
	symbol string
	color  string
}

var (
	suits = []suitFace{
		{Diamond, "♦", "#e74c3c"},
		{Heart, "♥", "#e74c3c"},
		{Spade, "♠", "#2c3e50"},
		{Club, "♣", "#2c3e50"},
	}
	values = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// Standard returns the 52 suited cards followed by one joker, with IDs 1..53.
func Standard() []Card {
	cards := lo.FlatMap(suits, func(s suitFace, _ int) []Card {
		return lo.Map(values, func(v string, _ int) Card {
			return Card{Value: v, Suit: s.suit, Symbol: s.symbol, Color: s.color}
		})
	})
	cards = append(cards, Card{Value: "JOKER", Suit: Joker, Symbol: "🃏", Color: "#8e44ad"})
	for i := range cards {
		cards[i].ID = i + 1
	}
	return cards
}

// IsFace reports whether the card is a court card or an ace.
func (c Card) IsFace() bool {
	return lo.Contains([]string{"J", "Q", "K", "A"}, c.Value)
}

// Deal draws n distinct cards and numbers them 1..n. If the source fails the
// remaining positions are filled in deck order, so a hand is always returned.
func Deal(cards []Card, n int, src rng.Source) ([]Numbered, error) {
	if n > len(cards) {
		return nil, fmt.Errorf("%w: %d > %d", ErrDealTooLarge, n, len(cards))
	}

	// Fisher-Yates, only the first n slots are needed.
	idx := lo.Range(len(cards))
	var srcErr error
	for i := 0; i < n; i++ {
		j, err := src.IntN(len(idx) - i)
		if err != nil {
			srcErr = err
			break
		}
		idx[i], idx[i+j] = idx[i+j], idx[i]
	}

	hand := lo.Map(idx[:n], func(k int, pos int) Numbered {
		return Numbered{Card: cards[k], Number: pos + 1}
	})
	return hand, srcErr
}

// Pick returns one card at random, or the first card if the source fails.
func Pick(cards []Card, src rng.Source) (Card, error) {
	if len(cards) == 0 {
		return Card{}, ErrDealTooLarge
	}
	i, err := src.IntN(len(cards))
	if err != nil {
		return cards[0], err
	}
	return cards[i], nil
}
