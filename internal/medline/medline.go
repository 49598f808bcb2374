// Package medline parses the NLM medline record text format: a sequence of
// tagged lines, one `TAG - value` per line with the tag left-justified in a
// four-column field, continuation lines indented six spaces, and records
// separated by blank lines. Repeated tags (authors, MeSH headings) accumulate
// into ordered lists.
package medline

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is one raw medline record: a mapping from short field tag to the
// ordered values that appeared under it. Scalar tags (PMID, TI, AB, DP) carry
// a single element; repeatable tags (FAU, MH, OT) carry one element per
// occurrence. Multi-line values are already joined.
type Record map[string][]string

// First returns the first value under tag, or "" when the tag is absent.
func (r Record) First(tag string) string {
	if vals, ok := r[tag]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// tagFieldWidth is the fixed width of the tag column; the value starts two
// columns later, after "- ".
const tagFieldWidth = 4

// Parse reads medline-formatted text and returns one Record per article.
// Lines that fit neither the tag nor the continuation shape are ignored,
// matching the tolerant behavior of common medline readers.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		current Record
		lastTag string
	)

	flush := func() {
		if len(current) > 0 {
			records = append(records, current)
		}
		current = nil
		lastTag = ""
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if tag, value, ok := splitTagLine(line); ok {
			if current == nil {
				current = Record{}
			}
			current[tag] = append(current[tag], value)
			lastTag = tag
			continue
		}

		// Continuation: six leading spaces, value joins the previous
		// line of the same field with a single space.
		if strings.HasPrefix(line, "      ") && lastTag != "" {
			vals := current[lastTag]
			vals[len(vals)-1] += " " + strings.TrimSpace(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading medline input: %w", err)
	}
	flush()

	return records, nil
}

// splitTagLine splits a `TAG - value` line. The tag occupies the first four
// columns padded with spaces; columns five and six are "- ".
func splitTagLine(line string) (tag, value string, ok bool) {
	if len(line) < tagFieldWidth+2 {
		return "", "", false
	}
	if line[tagFieldWidth] != '-' || line[tagFieldWidth+1] != ' ' {
		return "", "", false
	}
	tag = strings.TrimRight(line[:tagFieldWidth], " ")
	if tag == "" || strings.Contains(tag, " ") {
		return "", "", false
	}
	return tag, line[tagFieldWidth+2:], true
}
