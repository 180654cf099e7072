// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"regexp"
	"strings"
)

const (
	slashDelim   byte = '/'
	bracketDelim byte = '{'
	closeDelim   byte = '}'
	starDelim    byte = '*'
	colonDelim   byte = ':'
)

// defaultCatchAllKey is the parameter name of a catch-all written without a name, e.g. /files/*.
const defaultCatchAllKey = "*"

// segment is a parsed slice of a route pattern. Start and end are offsets into the
// string given to nextSegment.
type segment struct {
	key    string
	regexp string
	kind   nodeKind
	tail   byte
	start  int
	end    int
}

// nextSegment returns the next variable segment of pattern, or a static segment spanning
// the whole pattern when it has no variable part left.
func nextSegment(pattern string) (segment, error) {
	ps := strings.IndexByte(pattern, bracketDelim)
	ws := strings.IndexByte(pattern, starDelim)
	if ps < 0 && ws < 0 {
		return segment{kind: staticKind, end: len(pattern)}, nil
	}

	if ws >= 0 && (ps < 0 || ws < ps) {
		if ps >= 0 {
			return segment{}, &PatternError{Pattern: pattern, Reason: "wildcard must be the final pattern element"}
		}
		key := pattern[ws+1:]
		if key == "" {
			key = defaultCatchAllKey
		} else if strings.IndexByte(key, slashDelim) >= 0 || strings.IndexByte(key, starDelim) >= 0 {
			return segment{}, &PatternError{Pattern: pattern, Reason: "wildcard must be the final pattern element"}
		}
		return segment{kind: catchAllKind, key: key, start: ws, end: len(pattern)}, nil
	}

	// Read to the matching '}', counting nested braces so that regexp quantifiers
	// like {id:[0-9]{3}} stay inside the key.
	depth := 0
	pe := -1
	for i := ps; i < len(pattern); i++ {
		switch pattern[i] {
		case bracketDelim:
			depth++
		case closeDelim:
			depth--
		}
		if depth == 0 {
			pe = i
			break
		}
	}
	if pe < 0 {
		return segment{}, &PatternError{Pattern: pattern, Reason: "missing parameter closing delimiter '}'"}
	}

	seg := segment{
		kind:  paramKind,
		key:   pattern[ps+1 : pe],
		tail:  slashDelim,
		start: ps,
		end:   pe + 1,
	}
	if seg.end < len(pattern) {
		seg.tail = pattern[seg.end]
	}

	if idx := strings.IndexByte(seg.key, colonDelim); idx >= 0 {
		seg.kind = regexpKind
		seg.regexp = anchor(seg.key[idx+1:])
		seg.key = seg.key[:idx]
	}

	if seg.key == "" {
		return segment{}, &PatternError{Pattern: pattern, Reason: "missing parameter name"}
	}
	if seg.tail == bracketDelim || seg.tail == starDelim {
		return segment{}, &PatternError{Pattern: pattern, Reason: "parameter '" + seg.key + "' must be followed by a delimiter"}
	}

	return seg, nil
}

// anchor wraps a parameter regexp in a group bounded by ^ and $ so that it must match the whole
// captured value, alternations included. Anchors already written by the user are dropped.
func anchor(expr string) string {
	if expr == "" {
		return expr
	}
	expr = strings.TrimPrefix(expr, "^")
	if n := len(expr); n > 0 && expr[n-1] == '$' && (n == 1 || expr[n-2] != '\\') {
		expr = expr[:n-1]
	}
	return "^(?:" + expr + ")$"
}

// parsePattern validates the whole pattern and returns its parameter names in declaration
// order. It is called before any structural change to the tree, so a malformed pattern
// never leaves a partially applied split behind.
func parsePattern(pattern string) ([]string, error) {
	if pattern == "" || pattern[0] != slashDelim {
		return nil, &PatternError{Pattern: pattern, Reason: "pattern must start with '/'"}
	}

	keys := make([]string, 0)
	search := pattern
	for {
		seg, err := nextSegment(search)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Reason: err.(*PatternError).Reason}
		}
		if seg.kind == staticKind {
			return keys, nil
		}

		if seg.kind == regexpKind {
			if seg.regexp == "" {
				return nil, &PatternError{Pattern: pattern, Reason: "missing regular expression for parameter '" + seg.key + "'"}
			}
			if _, err := regexp.Compile(seg.regexp); err != nil {
				return nil, &PatternError{Pattern: pattern, Reason: "invalid regular expression for parameter '" + seg.key + "'", Err: err}
			}
		}

		for _, key := range keys {
			if key == seg.key {
				return nil, &DuplicateParamError{Pattern: pattern, Param: seg.key}
			}
		}
		keys = append(keys, seg.key)
		search = search[seg.end:]
	}
}
