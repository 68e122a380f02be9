package chunk

import "strings"

// SizeFunc measures a candidate piece of text against a budget.
type SizeFunc func(text string) int

// Level is one split granularity: how to cut text into units and how to glue them back.
type Level struct {
	Name  string
	Split func(text string) []string
	Join  string
}

// Split granularities, coarse to fine.
var (
	SectionLevel  = Level{Name: "section", Split: SplitSections, Join: sectionSeparator}
	SentenceLevel = Level{Name: "sentence", Split: SplitSentences, Join: sentenceSeparator}
	WordLevel     = Level{Name: "word", Split: SplitWords, Join: wordSeparator}
)

// Piece is one packed slice of text.
type Piece struct {
	Text string
	// Oversized is set when a unit at the finest level exceeds the budget on its own.
	Oversized bool
	// Sep is the separator that followed this piece in the packed text; empty for the last piece.
	Sep string
}

// ByteSize measures the UTF-8 encoded length of text.
func ByteSize(text string) int {
	return len(text)
}

// Pack greedily accumulates the units of the first level while size stays within budget.
// A unit that does not fit on its own is packed at the next level; the last piece produced
// there keeps accumulating the following units. When no finer level is left the unit is
// emitted whole and flagged oversized.
func Pack(text string, budget int, size SizeFunc, levels ...Level) []Piece {
	if len(levels) == 0 {
		levels = []Level{SectionLevel, SentenceLevel}
	}

	pieces := pack(text, budget, size, levels)
	if len(pieces) > 0 {
		pieces[len(pieces)-1].Sep = ""
	}

	return pieces
}

func pack(text string, budget int, size SizeFunc, levels []Level) []Piece {
	level := levels[0]

	var (
		pieces  []Piece
		current string
		pending bool
	)

	flush := func() {
		if pending {
			pieces = append(pieces, Piece{Text: current, Oversized: false, Sep: level.Join})
			current = ""
			pending = false
		}
	}

	for _, unit := range level.Split(text) {
		if pending {
			candidate := current + level.Join + unit
			if size(candidate) <= budget {
				current = candidate

				continue
			}

			flush()
		}

		if size(unit) <= budget {
			current = unit
			pending = true

			continue
		}

		if len(levels) == 1 {
			pieces = append(pieces, Piece{Text: unit, Oversized: true, Sep: level.Join})

			continue
		}

		sub := pack(unit, budget, size, levels[1:])
		if n := len(sub); n > 0 && !sub[n-1].Oversized {
			current = sub[n-1].Text
			pending = true
			sub = sub[:n-1]
			pieces = append(pieces, sub...)

			continue
		}

		pieces = append(pieces, sub...)
		if n := len(pieces); n > 0 {
			pieces[n-1].Sep = level.Join
		}
	}

	flush()

	return pieces
}

// Join concatenates pieces with the separators recorded during packing.
func Join(pieces []Piece) string {
	var builder strings.Builder

	for _, piece := range pieces {
		builder.WriteString(piece.Text)
		builder.WriteString(piece.Sep)
	}

	return builder.String()
}

// Texts returns the text of every piece.
func Texts(pieces []Piece) []string {
	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	return texts
}
