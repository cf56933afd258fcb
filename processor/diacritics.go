package processor

import "strings"

// mojibakeRepairs maps the byte-sequence corruptions produced by repeated
// mis-decoding of Romanian diacritics back to the intended characters. The
// table is applied in order: multi-step corruptions must be repaired before
// their shorter suffixes, so longer patterns come first.
var mojibakeRepairs = []struct {
	bad  string
	good string
}{
	{"Ã£Æ'Â¢", "â"},
	{"Ã£Æ'â€ž", "ă"},
	{"Ã£Æ'Ë†", "î"},
	{"Ã£Æ'Åž", "ș"},
	{"Ã£Æ'Å¢", "ț"},
	{"Ã£Æ'Ëœ", "Ș"},
	{"Ã£Æ'Å£", "Ț"},
	{"â€žÆ'", "ă"},
	{"â€œ", "\""},
	{"Ã¢", "â"},
	{"Â¢", ""},
	{"ÅŸ", "ș"},
	{"Å£", "ț"},
	{"Äƒ", "ă"},
	{"Ã®", "î"},
	{"Ã£", "ă"},
	{"Ä‚", "Ă"},
	{"È™", "ș"},
	{"È›", "ț"},
	{"Ä°", "İ"},
	{"Åž", "Ș"},
	{"Å¢", "Ț"},
}

// RepairDiacritics rewrites corrupted Romanian diacritics in text. Each
// table entry is applied over the whole text before the next one, so a
// repair may expose a pattern handled by a later entry.
func RepairDiacritics(text string) string {
	for _, r := range mojibakeRepairs {
		text = strings.ReplaceAll(text, r.bad, r.good)
	}
	return text
}
