package dataset

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	domainDefRe  = regexp.MustCompile(`(?s)\(define\s+\(domain[^)]*\).*?\n\)`)
	problemDefRe = regexp.MustCompile(`(?s)\(define\s+\(problem[^)]*\).*?\n\)`)
	planSeqRe    = regexp.MustCompile(`(?s)(?:PLAN:|Executable Plan|3️⃣)(.*?)(?:---|\z)`)

	hasDomainRe     = regexp.MustCompile(`(?i)\(define\s+\(domain`)
	hasProblemRe    = regexp.MustCompile(`(?i)\(define\s+\(problem`)
	hasActionRe     = regexp.MustCompile(`(?i):action\s+\w+`)
	hasPredicatesRe = regexp.MustCompile(`(?i):predicates|:precondition|:effect`)
)

// PDDLComponents are the sections found in a model's plan output. Missing
// sections are nil.
type PDDLComponents struct {
	Domain  *string
	Problem *string
	Plan    *string
}

// PDDLValidation is a structural check of PDDL text. It does not run a
// planner.
type PDDLValidation struct {
	IsValidStructure bool     `json:"is_valid_structure"`
	HasDomain        bool     `json:"has_domain"`
	HasProblem       bool     `json:"has_problem"`
	HasActions       bool     `json:"has_actions"`
	HasPredicates    bool     `json:"has_predicates"`
	Errors           []string `json:"errors"`
}

// Score is the fraction of the four structural markers present.
func (v PDDLValidation) Score() float64 {
	n := 0
	for _, ok := range []bool{v.HasDomain, v.HasProblem, v.HasActions, v.HasPredicates} {
		if ok {
			n++
		}
	}
	return float64(n) / 4.0
}

// PDDLStructure is the pddl_structure block of a dataset.
type PDDLStructure struct {
	DomainDefinition  *string        `json:"domain_definition"`
	ProblemDefinition *string        `json:"problem_definition"`
	PlanSequence      *string        `json:"plan_sequence"`
	Validation        PDDLValidation `json:"validation"`
}

// ExtractPDDL pulls the domain, problem and plan sections out of text.
func ExtractPDDL(text string) PDDLComponents {
	var c PDDLComponents
	if m := domainDefRe.FindString(text); m != "" {
		c.Domain = &m
	}
	if m := problemDefRe.FindString(text); m != "" {
		c.Problem = &m
	}
	if m := planSeqRe.FindStringSubmatch(text); m != nil {
		p := strings.TrimSpace(m[1])
		c.Plan = &p
	}
	return c
}

// ValidatePDDL checks text for the structural markers of a PDDL domain or
// problem and for balanced parentheses.
func ValidatePDDL(text string) PDDLValidation {
	v := PDDLValidation{
		HasDomain:     hasDomainRe.MatchString(text),
		HasProblem:    hasProblemRe.MatchString(text),
		HasActions:    hasActionRe.MatchString(text),
		HasPredicates: hasPredicatesRe.MatchString(text),
		Errors:        []string{},
	}
	v.IsValidStructure = v.HasDomain || v.HasProblem || (v.HasActions && v.HasPredicates)

	open := strings.Count(text, "(")
	closed := strings.Count(text, ")")
	if open != closed {
		v.Errors = append(v.Errors, fmt.Sprintf("Unbalanced parentheses: %d open, %d close", open, closed))
	}
	return v
}
