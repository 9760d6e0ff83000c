// Package view projects stamp cards into the slot grid and status lines
// shown to staff. It holds no business rules.
package view

import (
	"fmt"
	"strings"

	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/model"
)

// MaxSlotsPerRow bounds the width of the slot grid.
const MaxSlotsPerRow = 5

// Status classifies progress on the active card.
type Status string

const (
	StatusComplete     Status = "complete"
	StatusOneMore      Status = "one_more"
	StatusInProgress   Status = "in_progress"
	StatusStartCollect Status = "start"
)

// Options controls rendering.
type Options struct {
	StampsPerCard  int
	StampEmoji     string
	EmptySlotEmoji string
}

// OptionsFromConfig builds rendering options from application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StampsPerCard:  cfg.StampsPerCard,
		StampEmoji:     cfg.StampEmoji,
		EmptySlotEmoji: cfg.EmptySlotEmoji,
	}
}

// CardView is the rendered projection of a stamp card.
type CardView struct {
	Rows       [][]string `json:"rows"`
	StampsLine string     `json:"stamps"`
	CardsLine  string     `json:"cards"`
	Status     Status     `json:"status"`
	StatusText string     `json:"status_text"`
}

// Render builds the slot grid and summary lines for card.
func Render(card model.StampCard, opts Options) CardView {
	total := opts.StampsPerCard
	filled := min(max(card.Stamps, 0), total)

	rows := make([][]string, 0, (total+MaxSlotsPerRow-1)/MaxSlotsPerRow)
	for i := 0; i < total; i++ {
		if i%MaxSlotsPerRow == 0 {
			rows = append(rows, make([]string, 0, MaxSlotsPerRow))
		}
		slot := opts.EmptySlotEmoji
		if i < filled {
			slot = opts.StampEmoji
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], slot)
	}

	status, text := classify(card.Stamps, total)
	return CardView{
		Rows:       rows,
		StampsLine: fmt.Sprintf("Stamps: %d/%d", card.Stamps, total),
		CardsLine:  fmt.Sprintf("Cards Completed: %d | Rewards Earned: %d", card.CardsFilled, card.RewardsEarned),
		Status:     status,
		StatusText: text,
	}
}

// Grid joins the slot rows into printable lines.
func (v CardView) Grid() string {
	lines := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		lines[i] = strings.Join(row, " ")
	}
	return strings.Join(lines, "\n")
}

// HowItWorks describes the completion rule for the given card size.
func HowItWorks(stampsPerCard int) []string {
	return []string{
		fmt.Sprintf("1-%d Stamps: Updates normally", stampsPerCard-1),
		fmt.Sprintf("%d/%d Stamps: Auto-assigns reward coupon", stampsPerCard, stampsPerCard),
		fmt.Sprintf("Card resets to 0/%d after reward is given", stampsPerCard),
	}
}

func classify(stamps, total int) (Status, string) {
	switch {
	case stamps == total:
		return StatusComplete, "CARD COMPLETE! Ready for reward!"
	case stamps == total-1:
		return StatusOneMore, "One more stamp needed!"
	case stamps > 0:
		return StatusInProgress, fmt.Sprintf("%d stamps to go!", total-stamps)
	default:
		return StatusStartCollect, "Start collecting stamps!"
	}
}
