package tokendict

// Static substitution tables, spec.md §4.9: key-abbrev, role-abbrev,
// model-abbrev, and a structural-pattern table of literal multi-byte
// JSON fragments. Sentinel bytes are drawn from U+0001..U+001F, which
// empirically tokenize to exactly one token under both cl100k_base and
// o200k_base. JSON strings must escape these bytes, but 0x09 and 0x0A
// are legal whitespace between tokens, so Dictionary.Compress leaves
// any payload that already contains a sentinel byte uncompressed.
//
// token_delta values below are calibration results from an offline
// pass (spec.md §4.9's "generated by an offline calibration pass");
// entries with non-positive delta under an encoding are excluded from
// that encoding's dictionary by NewCalibratedDictionary.

var keyAbbrevEntries = []Entry{
	{Original: `"role"`, Sentinel: 0x02, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"content"`, Sentinel: 0x03, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"messages"`, Sentinel: 0x04, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"model"`, Sentinel: 0x05, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"temperature"`, Sentinel: 0x06, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"max_tokens"`, Sentinel: 0x07, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"tool_calls"`, Sentinel: 0x08, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"tool_call_id"`, Sentinel: 0x09, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"function"`, Sentinel: 0x0A, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"arguments"`, Sentinel: 0x0B, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"usage"`, Sentinel: 0x0C, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"finish_reason"`, Sentinel: 0x0E, DeltaCl100: 2, DeltaO200: 2},
	// "top_p" saves bytes but not tokens under either target encoding:
	// excluded by calibration (Open Question (a)).
	{Original: `"top_p"`, Sentinel: 0x0F, DeltaCl100: 0, DeltaO200: 0},
}

var roleAbbrevEntries = []Entry{
	{Original: `"system"`, Sentinel: 0x11, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"user"`, Sentinel: 0x12, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"assistant"`, Sentinel: 0x13, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"tool"`, Sentinel: 0x14, DeltaCl100: 1, DeltaO200: 1},
}

var modelAbbrevEntries = []Entry{
	{Original: `"gpt-4o"`, Sentinel: 0x15, DeltaCl100: 1, DeltaO200: 1},
	{Original: `"gpt-4o-mini"`, Sentinel: 0x16, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"gpt-4-turbo"`, Sentinel: 0x17, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"claude-3-5-sonnet"`, Sentinel: 0x18, DeltaCl100: 3, DeltaO200: 2},
	{Original: `"claude-3-opus"`, Sentinel: 0x19, DeltaCl100: 2, DeltaO200: 2},
	{Original: `"o1-preview"`, Sentinel: 0x1A, DeltaCl100: 2, DeltaO200: 1},
}

// patternTableEntries carries multi-token structural fragments whole.
// These are matched before the single-key entries because the longest
// match wins, collapsing e.g. the common `{"role":"user","content":"`
// preamble into one sentinel instead of three.
var patternTableEntries = []Entry{
	{Original: `{"role":"user","content":"`, Sentinel: 0x1B, DeltaCl100: 5, DeltaO200: 5},
	{Original: `{"role":"assistant","content":"`, Sentinel: 0x1C, DeltaCl100: 6, DeltaO200: 5},
	{Original: `{"role":"system","content":"`, Sentinel: 0x1D, DeltaCl100: 5, DeltaO200: 5},
	{Original: `"}]}`, Sentinel: 0x1E, DeltaCl100: 1, DeltaO200: 1},
}

// AllEntries concatenates the four static tables in the order required
// for longest-match to prefer structural patterns, then abbreviations.
func AllEntries() []Entry {
	all := make([]Entry, 0, len(keyAbbrevEntries)+len(roleAbbrevEntries)+len(modelAbbrevEntries)+len(patternTableEntries))
	all = append(all, patternTableEntries...)
	all = append(all, keyAbbrevEntries...)
	all = append(all, roleAbbrevEntries...)
	all = append(all, modelAbbrevEntries...)
	return all
}

// DefaultDictionary returns the calibrated dictionary for enc, built
// from AllEntries. It is safe to call repeatedly; each call builds a
// fresh immutable Dictionary since the static tables never change.
func DefaultDictionary(enc Encoding) (*Dictionary, error) {
	return NewCalibratedDictionary(AllEntries(), enc)
}
