/*
Package kvp extracts flat key/value pairs from unstructured text
such as log lines.

The scanner is a small state machine that walks the input once and
records key and value spans (offsets into the input). Strings are only
created after the scan completes, which is also when escape characters
are removed.

	e, err := kvp.NewBuilder().
		WithItemDelimiters(',', ' ').
		WithQuotingCharacter('"').
		WithEscaping().
		Build()
	if err != nil {
		return err
	}
	m, err := e.ExtractString(`name: "Neymar", age: 30, team: psg`)
	// m: {"name": "Neymar", "age": "30", "team": "psg"}

Extraction is lenient: fragments that don't form a valid pair are
skipped. The only failure is exceeding Config.MaxPairs, in which case
no result is returned.

An Extractor is immutable after Build and safe for concurrent use.
*/
package kvp
