package tunnel

import "strings"

// PromptRule pairs a literal prompt prefix with the scripted reply to send
// back to the child when a framed line matches it.
type PromptRule struct {
	MatchPrefix string
	Response    string
}

// DefaultPromptRules answers the OpenSSH host-key confirmation prompt
// ("Are you sure you want to continue connecting (yes/no)?"). That prompt
// only appears when ssh is attached to a terminal, which is the reason the
// child runs on a PTY in the first place.
//
// Matching is a literal English prefix of the OpenSSH client's own wording
// and is inherently version/locale sensitive; the table stays small and
// explicit rather than trying to generalize.
var DefaultPromptRules = []PromptRule{
	{MatchPrefix: "Are you sure you want", Response: "yes\n"},
}

// Responder inspects framed lines against a rule table and produces the
// reply bytes for the first matching rule.
type Responder struct {
	rules []PromptRule
}

// NewResponder builds a responder over the given table. Rules are checked
// in table order; first match wins.
func NewResponder(rules []PromptRule) *Responder {
	return &Responder{rules: rules}
}

// Inspect returns the scripted response for the line, or (nil, false) when
// no rule matches — the common case for ordinary tunnel output.
func (r *Responder) Inspect(line OutputLine) ([]byte, bool) {
	for _, rule := range r.rules {
		if strings.HasPrefix(line.Text, rule.MatchPrefix) {
			return []byte(rule.Response), true
		}
	}
	return nil, false
}
