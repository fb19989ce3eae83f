// Package classify filters PBS records down to the biologic and targeted
// synthetic drugs used in rheumatology, and maps free-text clinical
// conditions onto a canonical set of rheumatic diseases.
package classify

import (
	"fmt"
	"strings"

	"github.com/cmcmaster/rheum-biologics/internal/normalize"
)

// DefaultBiologics is the built-in drug allow-list. Matching is
// case-insensitive substring containment, so salt and biosimilar suffixes in
// the PBS drug name ("adalimumab (rch)") still match.
var DefaultBiologics = []string{
	"adalimumab",
	"etanercept",
	"infliximab",
	"certolizumab",
	"golimumab",
	"rituximab",
	"abatacept",
	"tocilizumab",
	"secukinumab",
	"ixekizumab",
	"ustekinumab",
	"guselkumab",
	"tofacitinib",
	"baricitinib",
	"upadacitinib",
	"anifrolumab",
	"bimekizumab",
	"avacopan",
	"risankizumab",
}

// DefaultDiseases is the built-in rheumatic disease allow-list. Order is
// load-bearing: condition texts that mention several diseases resolve to the
// first entry that matches.
var DefaultDiseases = []string{
	"rheumatoid arthritis",
	"psoriatic arthritis",
	"ankylosing spondylitis",
	"non-radiographic axial spondyloarthritis",
	"giant cell arteritis",
	"juvenile idiopathic arthritis",
	"systemic lupus erythematosus",
	"anti-neutrophil cytoplasmic autoantibody (anca) associated vasculitis",
}

// Classifier performs allow-list matching for drugs and indications.
type Classifier struct {
	biologics []string // lower-cased
	diseases  []string // lower-cased, in priority order
	canonical []string // display form of diseases, same order
}

// New builds a Classifier. Empty slices fall back to the built-in lists.
func New(biologics, diseases []string) (*Classifier, error) {
	if len(biologics) == 0 {
		biologics = DefaultBiologics
	}
	if len(diseases) == 0 {
		diseases = DefaultDiseases
	}

	c := &Classifier{
		biologics: make([]string, len(biologics)),
		diseases:  make([]string, len(diseases)),
		canonical: make([]string, len(diseases)),
	}
	for i, b := range biologics {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			return nil, fmt.Errorf("blank biologic entry at index %d", i)
		}
		c.biologics[i] = b
	}
	for i, d := range diseases {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			return nil, fmt.Errorf("blank disease entry at index %d", i)
		}
		c.diseases[i] = d
		c.canonical[i] = normalize.TitleCase(d)
	}
	return c, nil
}

// IsBiologic reports whether the raw drug name contains any configured
// biologic name, ignoring case.
func (c *Classifier) IsBiologic(drugName string) bool {
	lowered := strings.ToLower(drugName)
	for _, b := range c.biologics {
		if strings.Contains(lowered, b) {
			return true
		}
	}
	return false
}

// MatchDisease returns the canonical name of the first configured disease
// contained in the condition text, or nil when none match.
func (c *Classifier) MatchDisease(condition string) *string {
	if condition == "" {
		return nil
	}
	lowered := strings.ToLower(condition)
	for i, d := range c.diseases {
		if strings.Contains(lowered, d) {
			name := c.canonical[i]
			return &name
		}
	}
	return nil
}
