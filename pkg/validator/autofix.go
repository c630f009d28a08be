package validator

import (
	"sort"
	"strings"
)

// AutoFix is a deterministic replacement of one misspelled class name.
type AutoFix struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	StartByte uint   `json:"-"`
	EndByte   uint   `json:"-"`
	OldText   string `json:"old_text"`
	NewText   string `json:"new_text"`
	Reason    string `json:"reason"`
}

// ApplyFixes returns code with every fix applied, plus the indices into
// fixes of those that were. Fixes whose byte range no longer holds
// OldText, or that overlap an earlier fix, are skipped.
func ApplyFixes(code string, fixes []AutoFix) (string, []int) {
	order := make([]int, len(fixes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return fixes[order[i]].StartByte < fixes[order[j]].StartByte })

	var b strings.Builder
	b.Grow(len(code))

	var applied []int
	cursor := uint(0)
	for _, i := range order {
		fix := fixes[i]
		if fix.StartByte < cursor || fix.EndByte > uint(len(code)) || fix.StartByte > fix.EndByte {
			continue
		}
		if code[fix.StartByte:fix.EndByte] != fix.OldText {
			continue
		}
		b.WriteString(code[cursor:fix.StartByte])
		b.WriteString(fix.NewText)
		cursor = fix.EndByte
		applied = append(applied, i)
	}
	b.WriteString(code[cursor:])
	sort.Ints(applied)
	return b.String(), applied
}
