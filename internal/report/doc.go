// Package report implements the codec for the legacy line-oriented
// analysis report format: a parser that degrades malformed rows to
// unknown records instead of failing, and a serializer that renders a
// canonical document back into the same grammar.
package report
