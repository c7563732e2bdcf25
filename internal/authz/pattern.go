package authz

import (
	"fmt"
	"regexp"
	"strings"
)

// segment はパスパターンの1セグメント。
// wildcardの場合は任意の1セグメントに、constraintがあればそれに完全一致するセグメントに一致する。
type segment struct {
	literal    string
	wildcard   bool
	constraint *regexp.Regexp
}

// compilePattern は "/api/v1/pet/{id}" や "/api/v1/pet/{id:[0-9]+}" 形式のパターンをセグメント列に変換する。
func compilePattern(pattern string) ([]segment, int, error) {
	parts := splitPath(pattern)
	segs := make([]segment, len(parts))
	literals := 0
	for i, part := range parts {
		if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			segs[i] = segment{literal: part}
			literals++
			continue
		}
		segs[i] = segment{wildcard: true}
		if _, expr, ok := strings.Cut(part[1:len(part)-1], ":"); ok {
			re, err := regexp.Compile("^(?:" + expr + ")$")
			if err != nil {
				return nil, 0, fmt.Errorf("invalid constraint in segment %q: %w", part, err)
			}
			segs[i].constraint = re
		}
	}
	return segs, literals, nil
}

// splitPath はパスをセグメントに分割する。末尾スラッシュと空セグメントは無視する。
func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func (r *Rule) matches(parts []string) bool {
	if len(parts) != len(r.segments) {
		return false
	}
	for i, seg := range r.segments {
		if seg.wildcard {
			if seg.constraint != nil && !seg.constraint.MatchString(parts[i]) {
				return false
			}
			continue
		}
		if seg.literal != parts[i] {
			return false
		}
	}
	return true
}
