// SPDX-License-Identifier: GPL-3.0-or-later

package obfstls

// shortWords and largeWords stand in for the two EFF wordlists
// (`eff_wordlist::short`, `eff_wordlist::large`) the original tunnel
// connector draws from. No example in this corpus wires a wordlist
// library, so these are a small embedded slice rather than a
// dependency; the generator only needs plausible lowercase tokens, not
// the full EFF corpus.
var shortWords = []string{
	"acid", "aim", "also", "ant", "army", "bait", "bake", "balm",
	"band", "bark", "barn", "base", "bath", "bean", "bell", "belt",
	"best", "bike", "bird", "blue", "boat", "body", "bold", "bolt",
}

var largeWords = []string{
	"abandon", "ability", "abroad", "absence", "academy", "account",
	"acquire", "actress", "address", "advisor", "airline", "airport",
	"alcohol", "already", "anchors", "anxiety", "apology", "arrange",
	"article", "athlete", "attract", "average", "backing", "balance",
}
