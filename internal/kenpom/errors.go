package kenpom

import "fmt"

// InvalidSeasonError means the requested season is outside the range kenpom
// publishes (1999 through the current season). Never retried.
type InvalidSeasonError struct {
	Season  int
	Current int
}

func (e *InvalidSeasonError) Error() string {
	return fmt.Sprintf("season %d out of range: data covers 1999 through %d", e.Season, e.Current)
}

// UnknownTeamError means the team name is not in the season's team list.
// Team names must match the ratings page spelling exactly.
type UnknownTeamError struct {
	Team   string
	Season int
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("team %q not found for season %d; spelling must match the ratings page exactly", e.Team, e.Season)
}

// StructureError means an expected table or script block was not where the
// page layout contract says it should be. It fails the single extraction but
// is recoverable at the batch level.
type StructureError struct {
	Page   string
	Detail string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("unexpected %s page structure: %s", e.Page, e.Detail)
}

// NetworkError is a non-recoverable HTTP failure from the fetch layer.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TransientFetchError is surfaced when a retried operation exhausts its
// attempt budget.
type TransientFetchError struct {
	Attempts int
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }
