package gatekeeper

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/use-agent/purify-crawl/models"
)

// SignalType is the closed set of signal kinds a rule may combine
// (spec.md §4.6).
type SignalType string

const (
	SignalContainsScript    SignalType = "contains_script"
	SignalTitleMatches      SignalType = "title_matches"
	SignalBodyTextLenLT     SignalType = "body_text_len_lt"
	SignalStatusIn          SignalType = "status_in"
	SignalRedirectToLogin   SignalType = "redirect_to_login"
	SignalHTMLBytesLT       SignalType = "html_bytes_lt"
	SignalVisibleTextLenLT  SignalType = "visible_text_len_lt"
	SignalMainContentLenLT  SignalType = "main_content_len_lt"
	SignalHasStructuredData SignalType = "has_structured_data"
)

// Signal is one matchable condition within a Rule.
type Signal struct {
	Type SignalType `json:"type"`

	Substring   string   `json:"substring,omitempty"`   // contains_script, title_matches
	Substrings  []string `json:"substrings,omitempty"`   // redirect_to_login
	N           int      `json:"n,omitempty"`            // *_len_lt
	Statuses    []int    `json:"statuses,omitempty"`      // status_in
	BoolValue   bool     `json:"value,omitempty"`         // has_structured_data
}

// Rule fires when all of its Signals match (spec.md §4.6).
type Rule struct {
	ID         string        `json:"id"`
	BlockClass models.BlockClass `json:"blockClass"`
	Signals    []Signal      `json:"signals"`
	Confidence float64       `json:"confidence,omitempty"`
}

// Section is either the "global" section or one entry under "domains" in
// the rules file.
type Section struct {
	Rules      []Rule             `json:"rules"`
	Thresholds *models.Thresholds `json:"thresholds,omitempty"`
}

// RulesFile is the top-level shape of the gatekeeper rules JSON document
// (spec.md §6 "Gatekeeper rules file").
type RulesFile struct {
	Global  *Section           `json:"global,omitempty"`
	Domains map[string]Section `json:"domains,omitempty"`
}

// Store loads a RulesFile lazily on first use and caches it for the
// process lifetime (spec.md §5 "gatekeeper config: loaded lazily once and
// cached ... the reference never reloads").
type Store struct {
	path string

	once  sync.Once
	rules *RulesFile
	err   error
}

// NewStore creates a Store pointed at path. An empty path means "no rules
// file"; Get then always returns an empty RulesFile so classification
// falls through to default thresholds.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the loaded rules file, loading it on the first call.
func (s *Store) Get() (*RulesFile, error) {
	s.once.Do(func() {
		if s.path == "" {
			s.rules = &RulesFile{}
			return
		}
		data, err := os.ReadFile(s.path)
		if err != nil {
			s.err = err
			s.rules = &RulesFile{}
			return
		}
		var rf RulesFile
		if err := json.Unmarshal(data, &rf); err != nil {
			s.err = err
			s.rules = &RulesFile{}
			return
		}
		s.rules = &rf
	})
	return s.rules, s.err
}

// sectionFor resolves the effective section for host: the per-host
// override entirely replaces the global section when present (spec.md
// §4.6 "Config ... per-host overrides").
func (rf *RulesFile) sectionFor(host string) Section {
	if rf.Domains != nil {
		if sec, ok := rf.Domains[host]; ok {
			return sec
		}
	}
	if rf.Global != nil {
		return *rf.Global
	}
	return Section{}
}
