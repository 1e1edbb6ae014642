package service

import (
	"testing"

	"github.com/unimatch/unimatch-backend/internal/model"
)

func f(v float64) *float64 { return &v }

func TestEvaluateMatch(t *testing.T) {
	tests := []struct {
		name      string
		user      model.User
		candidate model.Candidate
		want      bool
	}{
		{
			name:      "sat meets average",
			user:      model.User{SATScore: f(1300)},
			candidate: model.Candidate{SATAvg: f(1250), ACTAvg: f(30)},
			want:      true,
		},
		{
			name:      "act meets average when sat does not",
			user:      model.User{SATScore: f(1000), ACTScore: f(32)},
			candidate: model.Candidate{SATAvg: f(1400), ACTAvg: f(28)},
			want:      true,
		},
		{
			name:      "neither score meets average",
			user:      model.User{SATScore: f(1000), ACTScore: f(20)},
			candidate: model.Candidate{SATAvg: f(1400), ACTAvg: f(30)},
			want:      false,
		},
		{
			name:      "exact equality matches",
			user:      model.User{SATScore: f(1250)},
			candidate: model.Candidate{SATAvg: f(1250)},
			want:      true,
		},
		{
			name:      "candidate with no data never matches",
			user:      model.User{SATScore: f(1600), ACTScore: f(36)},
			candidate: model.Candidate{},
			want:      false,
		},
		{
			name:      "candidate with zero averages never matches",
			user:      model.User{SATScore: f(1600)},
			candidate: model.Candidate{SATAvg: f(0), ACTAvg: f(0)},
			want:      false,
		},
		{
			// The missing ACT compares as zero, and a zero user score still
			// meets a zero candidate average once the other side has data.
			name:      "missing user act compares as zero against present sat avg",
			user:      model.User{},
			candidate: model.Candidate{SATAvg: f(1400)},
			want:      true,
		},
		{
			name:      "user without scores loses on both present averages",
			user:      model.User{},
			candidate: model.Candidate{SATAvg: f(1400), ACTAvg: f(30)},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateMatch(&tt.user, &tt.candidate)
			if got != tt.want {
				t.Errorf("EvaluateMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}
