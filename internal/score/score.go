// Package score implements the deterministic multi-factor posting scorer.
//
// A score is the clamped sum of independently-capped sub-scores:
//
//	skills      0..40
//	experience  0..30
//	location    0..30
//	bonus       0..10
//	exclusions  -10 per matched excluded keyword (uncapped before the clamp)
//
// All matching is case-insensitive substring matching over title +
// description. No stemming, no external calls, no state across calls.
package score

import (
	"strings"

	"github.com/svensoldin/job-searcher/internal/model"
)

const (
	skillNeutral    = 15
	skillFewMatches = 30 // 1 or 2 matched skills score the same, deliberately
	skillMaxScore   = 40

	expNeutral   = 15
	expHit       = 30
	expWrongTier = 8

	locBase      = 15
	locRemoteHit = 30
	locPlaceHit  = 25

	exclusionPenalty = 10
	bonusPerGroup    = 4
	bonusCap         = 10

	maxScore = 100
)

// skillVariants maps a canonical lowercase skill to its known lexical
// variants. Skills not listed here match on their lowercased literal form.
var skillVariants = map[string][]string{
	"react":      {"react", "reactjs", "react.js"},
	"typescript": {"typescript", "ts"},
	"javascript": {"javascript", "js"},
	"node":       {"node", "nodejs", "node.js"},
	"vue":        {"vue", "vuejs", "vue.js"},
	"angular":    {"angular", "angularjs"},
	"kubernetes": {"kubernetes", "k8s"},
	"postgresql": {"postgresql", "postgres"},
}

// experienceLevels maps each preference label to its phrase set. A hit in the
// target set scores expHit; a hit in a different set without one in the
// target scores expWrongTier.
var experienceLevels = map[string][]string{
	"junior": {"junior", "entry level", "entry-level", "graduate", "0-2 years", "intern"},
	"mid":    {"mid-level", "mid level", "intermediate", "2+ years", "3+ years", "2-4 years"},
	"senior": {"senior", "lead", "principal", "staff engineer", "5+ years", "7+ years"},
}

var remoteTerms = []string{"remote", "work from home", "wfh", "hybrid", "distributed team"}

// bonusGroups are independent indicator groups; each contributes
// bonusPerGroup when any of its terms appears, total capped at bonusCap.
var bonusGroups = [][]string{
	{"equity", "stock options", "rsu", "employee stock"},
	{"unlimited pto", "flexible time off", "unlimited vacation", "flexible pto"},
	{"learning budget", "education budget", "training budget", "conference budget"},
}

// Score maps (posting, criteria) to an integer in [0, 100]. A missing
// description is treated as an empty string, which naturally yields
// low/neutral sub-scores rather than an error.
func Score(p model.Posting, c model.Criteria) int {
	text := strings.ToLower(p.Text())

	total := skillScore(text, c.CoreSkills) +
		experienceScore(text, c.ExperienceLevel) +
		locationScore(text, c)

	total += bonusScore(text)
	total -= exclusionPenalty * exclusionHits(text, c.ExcludedKeywords)

	return clamp(total, 0, maxScore)
}

// skillScore applies the threshold table: no required skills is neutral,
// 0 matches scores nothing, 1-2 matches score skillFewMatches and 3 or more
// score skillMaxScore. The 1==2 step is intentional and load-bearing.
func skillScore(text string, skills []string) int {
	if len(skills) == 0 {
		return skillNeutral
	}
	matched := 0
	for _, skill := range skills {
		if matchesSkill(text, skill) {
			matched++
		}
	}
	switch {
	case matched == 0:
		return 0
	case matched <= 2:
		return skillFewMatches
	default:
		return skillMaxScore
	}
}

func matchesSkill(text, skill string) bool {
	key := strings.ToLower(strings.TrimSpace(skill))
	if key == "" {
		return false
	}
	variants, ok := skillVariants[key]
	if !ok {
		variants = []string{key}
	}
	for _, v := range variants {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}

func experienceScore(text, preference string) int {
	pref := strings.ToLower(strings.TrimSpace(preference))
	if pref == "" {
		return expNeutral
	}
	target, known := experienceLevels[pref]
	if !known {
		return expNeutral
	}
	if containsAny(text, target) {
		return expHit
	}
	for level, phrases := range experienceLevels {
		if level == pref {
			continue
		}
		if containsAny(text, phrases) {
			return expWrongTier
		}
	}
	return expNeutral
}

// locationScore starts from a neutral base. The remote-preference check and
// the preferred-location check each propose a value; the result is the max of
// the proposals, never their sum.
func locationScore(text string, c model.Criteria) int {
	score := locBase
	if c.RemotePreference != "" && containsAny(text, remoteTerms) {
		score = max(score, locRemoteHit)
	}
	for _, loc := range c.Locations {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc != "" && strings.Contains(text, loc) {
			score = max(score, locPlaceHit)
			break
		}
	}
	return score
}

func bonusScore(text string) int {
	total := 0
	for _, group := range bonusGroups {
		if containsAny(text, group) {
			total += bonusPerGroup
		}
	}
	return min(total, bonusCap)
}

func exclusionHits(text string, excluded []string) int {
	hits := 0
	for _, kw := range excluded {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
