package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svensoldin/job-searcher/internal/model"
)

func posting(title, description string) model.Posting {
	return model.Posting{Title: title, Company: "Acme", URL: "https://jobs.example/1", Description: description}
}

func TestScoreBounds(t *testing.T) {
	criteria := []model.Criteria{
		{},
		{CoreSkills: []string{"react", "typescript", "node"}},
		{ExcludedKeywords: []string{"a", "e", "i", "o", "u", "t", "s", "n", "r", "l", "d", "c"}},
		{
			CoreSkills:       []string{"react"},
			ExperienceLevel:  "senior",
			RemotePreference: "remote",
			Locations:        []string{"berlin"},
		},
	}
	postings := []model.Posting{
		posting("", ""),
		posting("Senior React Developer", "remote, equity, unlimited pto, learning budget"),
		posting("Frontend Developer", "React and TypeScript in a distributed team"),
	}

	for _, c := range criteria {
		for _, p := range postings {
			got := Score(p, c)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

func TestScoreNeutralCriteria(t *testing.T) {
	// Empty skills, experience, remote preference and exclusions: every factor
	// lands on its neutral default and no bonus term is present.
	p := posting("Backend Developer", "Build and maintain our core platform.")
	assert.Equal(t, 45, Score(p, model.Criteria{}))
}

func TestSkillStepFunction(t *testing.T) {
	c := model.Criteria{CoreSkills: []string{"react", "typescript", "kubernetes"}}

	one := posting("Developer", "We use React heavily.")
	two := posting("Developer", "We use React and TypeScript.")
	three := posting("Developer", "React, TypeScript and Kubernetes.")

	// 1 and 2 matches score the same sub-score; all 3 score higher.
	assert.Equal(t, Score(one, c), Score(two, c))
	assert.Greater(t, Score(three, c), Score(two, c))
	assert.Equal(t, 10, Score(three, c)-Score(two, c))
}

func TestSkillVariants(t *testing.T) {
	c := model.Criteria{CoreSkills: []string{"React"}}

	tests := []struct {
		name string
		text string
		want int // expected total: skill sub-score + 15 + 15 neutral defaults
	}{
		{"canonical", "experience with React", 60},
		{"lowercase variant", "experience with reactjs", 60},
		{"dotted variant", "experience with react.js", 60},
		{"no match", "experience with Angular", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(posting("Developer", tt.text), c))
		})
	}
}

func TestSkillNoRequiredSkillsIsNeutral(t *testing.T) {
	// 0 required skills must be neutral (15), not rewarded as a full match.
	p := posting("Developer", "React and TypeScript everywhere.")
	withSkills := Score(p, model.Criteria{CoreSkills: []string{"react", "typescript", "node"}})
	neutral := Score(p, model.Criteria{})
	assert.Equal(t, 45, neutral)
	assert.Greater(t, withSkills, neutral)
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		name  string
		pref  string
		text  string
		total int
	}{
		{"target hit", "senior", "looking for a senior engineer", 30 + 30 + 15},
		{"target hit via years", "mid", "3+ years of experience required", 30 + 30 + 15},
		{"wrong tier hit", "senior", "great junior opportunity", 30 + 8 + 15},
		{"neither", "senior", "engineer wanted", 30 + 15 + 15},
		{"no preference", "", "looking for a senior engineer", 30 + 15 + 15},
	}
	c := model.Criteria{CoreSkills: []string{"go-specific-skill"}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crit := c
			crit.ExperienceLevel = tt.pref
			p := posting("Engineer", tt.text+" go-specific-skill")
			assert.Equal(t, tt.total, Score(p, crit))
		})
	}
}

func TestLocationRemoteMaxNotSum(t *testing.T) {
	c := model.Criteria{RemotePreference: "remote", Locations: []string{"Berlin"}}

	remoteOnly := posting("Engineer", "fully remote position")
	locationOnly := posting("Engineer", "office in Berlin")
	both := posting("Engineer", "remote or from our Berlin office")

	// remote hit: 15+15+30 = 60; location hit: 15+15+25 = 55;
	// both present take the max (30), never 30+25.
	assert.Equal(t, 60, Score(remoteOnly, c))
	assert.Equal(t, 55, Score(locationOnly, c))
	assert.Equal(t, 60, Score(both, c))
}

func TestExclusionMonotonicity(t *testing.T) {
	p := posting("PHP Developer", "legacy codebase, on-call rotation")
	base := model.Criteria{CoreSkills: []string{"react"}}

	without := Score(p, base)

	withOne := base
	withOne.ExcludedKeywords = []string{"php"}
	assert.Equal(t, without-10, Score(p, withOne))

	withTwo := base
	withTwo.ExcludedKeywords = []string{"php", "on-call"}
	assert.Equal(t, without-20, Score(p, withTwo))

	// Absent keyword changes nothing.
	withAbsent := base
	withAbsent.ExcludedKeywords = []string{"cobol"}
	assert.Equal(t, without, Score(p, withAbsent))
}

func TestExclusionsClampToZero(t *testing.T) {
	p := posting("PHP Developer", "wordpress agency doing php and jquery consulting")
	c := model.Criteria{
		CoreSkills:       []string{"react"},
		ExcludedKeywords: []string{"php", "wordpress", "jquery", "agency", "consulting"},
	}
	assert.Equal(t, 0, Score(p, c))
}

func TestBonusGroupsCapped(t *testing.T) {
	// Each group contributes a fixed value; three groups exceed the cap and
	// are clamped to 10 before being added.
	one := posting("Engineer", "we offer equity")
	all := posting("Engineer", "equity, unlimited pto and a learning budget")

	assert.Equal(t, 45+4, Score(one, model.Criteria{}))
	assert.Equal(t, 45+10, Score(all, model.Criteria{}))
}

func TestScoreMissingDescription(t *testing.T) {
	p := model.Posting{Title: "Frontend Developer", Company: "Acme", URL: "https://x/1"}
	got := Score(p, model.Criteria{CoreSkills: []string{"react"}, ExperienceLevel: "senior"})
	assert.GreaterOrEqual(t, got, 0)
	assert.LessOrEqual(t, got, 100)
}

func TestScoreEndToEndScenario(t *testing.T) {
	p := posting(
		"Frontend Developer",
		"We build with React and TypeScript. Remote-first company. 3+ years of frontend experience.",
	)
	c := model.Criteria{
		CoreSkills:       []string{"React", "TypeScript"},
		ExperienceLevel:  "mid",
		RemotePreference: "remote",
	}

	// 2 of 2 required skills still lands in the 1-2 match branch (30),
	// mid-level phrase hit (30), remote term present (30): 90 before bonuses.
	assert.GreaterOrEqual(t, Score(p, c), 90)
}

func TestScoreDeterministic(t *testing.T) {
	p := posting("Senior React Developer", "remote, equity, 5+ years")
	c := model.Criteria{CoreSkills: []string{"react"}, ExperienceLevel: "senior", RemotePreference: "remote"}
	first := Score(p, c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(p, c))
	}
}
