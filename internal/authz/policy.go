// Package authz は (HTTPメソッド, パスパターン) → 許可ロール集合 の静的なルール表による認可を提供する。
//
// ロールはフラットで、MANAGERやADMINがUSERのルートを暗黙に許可されることはない。
// どのルールにも一致しないリクエストは、明示的に設定された既定判定に従う。
package authz

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/furcode/internal/model"
)

// Access はルールが要求するアクセス種別を表す。
type Access int

const (
	// AccessRoles は列挙されたロールのいずれかを要求する。
	AccessRoles Access = iota
	// AccessAuthenticated はロールを問わず認証済みであることを要求する。
	AccessAuthenticated
	// AccessPublic は匿名を含む全リクエストを許可する。
	AccessPublic
	// AccessDefault はポリシーの既定判定に従う。より一般的なパターンに吸収されないよう予約するために使う。
	AccessDefault
)

// Rule は1つの認可ルールを表す。ルール表はプロセス起動時に1度だけ構築され、以後変更されない。
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Roles   []model.Role

	segments []segment
	literals int
}

// Require は指定ロールのいずれかを要求するルールを生成する。
func Require(method, pattern string, roles ...model.Role) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessRoles, Roles: roles}
}

// Authenticated は認証済みであることのみを要求するルールを生成する。
func Authenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessAuthenticated}
}

// Public は匿名アクセスを許可するルールを生成する。
func Public(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessPublic}
}

// UseDefault は既定判定に従うルールを生成する。
func UseDefault(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessDefault}
}

// String はログ出力用の表現を返す。
func (r *Rule) String() string {
	return r.Method + " " + r.Pattern
}

// allows はprincipalがルールを満たすかを返す。principalがnilの場合は匿名。
func (r *Rule) allows(p *model.Principal) bool {
	switch r.Access {
	case AccessPublic:
		return true
	case AccessAuthenticated:
		return p != nil
	}
	if p == nil {
		return false
	}
	for _, role := range r.Roles {
		if role == p.Role {
			return true
		}
	}
	return false
}

// Decision は認可判定の結果を表す。
type Decision int

const (
	// Permit はリクエストの続行を許可する。
	Permit Decision = iota
	// DenyUnauthenticated は匿名リクエストが保護されたルートに到達したことを表す（401）。
	DenyUnauthenticated
	// DenyForbidden は認証済みだがロールが不足していることを表す（403）。
	DenyForbidden
)

// String はメトリクスラベル用の表現を返す。
func (d Decision) String() string {
	switch d {
	case Permit:
		return "permit"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	}
	return "unknown"
}

// DefaultDecision はどのルールにも一致しないリクエストの扱いを表す。
type DefaultDecision string

const (
	// DefaultPermit は未一致のリクエストを許可する。
	DefaultPermit DefaultDecision = "permit"
	// DefaultDeny は未一致のリクエストを拒否する。
	DefaultDeny DefaultDecision = "deny"
)

// ParseDefaultDecision は設定値を既定判定に変換する。
func ParseDefaultDecision(s string) (DefaultDecision, error) {
	switch d := DefaultDecision(strings.ToLower(strings.TrimSpace(s))); d {
	case DefaultPermit, DefaultDeny:
		return d, nil
	}
	return "", fmt.Errorf("invalid default authorization decision %q (want permit or deny)", s)
}

// Policy はルール表に基づく認可ポリシー。並行利用に安全。
type Policy struct {
	rules []Rule
	def   DefaultDecision
}

// NewPolicy はルール表を検証してPolicyを生成する。
func NewPolicy(rules []Rule, def DefaultDecision) (*Policy, error) {
	if def != DefaultPermit && def != DefaultDeny {
		return nil, fmt.Errorf("invalid default decision %q", def)
	}

	compiled := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !validMethod(r.Method) {
			return nil, fmt.Errorf("rule %s: unsupported method", r.String())
		}
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("rule %s: pattern must start with /", r.String())
		}
		if r.Access == AccessRoles {
			if len(r.Roles) == 0 {
				return nil, fmt.Errorf("rule %s: no roles given", r.String())
			}
			for _, role := range r.Roles {
				if !role.Valid() {
					return nil, fmt.Errorf("rule %s: unknown role %q", r.String(), role)
				}
			}
		}
		r.Method = strings.ToUpper(r.Method)
		r.Roles = append([]model.Role(nil), r.Roles...)
		segs, literals, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.String(), err)
		}
		r.segments, r.literals = segs, literals
		compiled = append(compiled, r)
	}

	return &Policy{rules: compiled, def: def}, nil
}

// Default は既定判定を返す。
func (p *Policy) Default() DefaultDecision {
	return p.def
}

// Match はリクエストに一致するルールを返す。
// 複数一致した場合はリテラルセグメント数が最も多いルールを、同数なら先に宣言されたルールを返す。
func (p *Policy) Match(method, path string) (*Rule, bool) {
	method = strings.ToUpper(method)
	parts := splitPath(path)

	var best *Rule
	for i := range p.rules {
		r := &p.rules[i]
		if r.Method != method || !r.matches(parts) {
			continue
		}
		if best == nil || r.literals > best.literals {
			best = r
		}
	}
	return best, best != nil
}

// Decide はリクエストの認可判定を行う。principalがnilの場合は匿名として扱う。
func (p *Policy) Decide(method, path string, principal *model.Principal) Decision {
	if rule, ok := p.Match(method, path); ok && rule.Access != AccessDefault {
		if rule.allows(principal) {
			return Permit
		}
		return deny(principal)
	}

	if p.def == DefaultPermit {
		return Permit
	}
	return deny(principal)
}

func deny(p *model.Principal) Decision {
	if p == nil {
		return DenyUnauthenticated
	}
	return DenyForbidden
}

func validMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
