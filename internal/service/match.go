package service

import "github.com/unimatch/unimatch-backend/internal/model"

// EvaluateMatch decides whether a swipe-right on a candidate is a match.
// A candidate with neither a SAT nor an ACT average carries no data to
// compare against and never matches. Otherwise the user matches when either
// score meets or exceeds the candidate's average. Missing scores on either
// side compare as zero.
func EvaluateMatch(user *model.User, candidate *model.Candidate) bool {
	userSAT := deref(user.SATScore)
	userACT := deref(user.ACTScore)
	candSAT := deref(candidate.SATAvg)
	candACT := deref(candidate.ACTAvg)

	hasData := candSAT > 0 || candACT > 0
	return hasData && (userSAT >= candSAT || userACT >= candACT)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
