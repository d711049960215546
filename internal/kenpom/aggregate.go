package kenpom

// TeamAggregates joins the four summary tables consulted when flattening
// team-level features onto player records. Loaded once per batch and shared
// read-only across teams.
type TeamAggregates struct {
	FourFactors *AggregateTable
	TeamStats   *AggregateTable
	TeamStatsD  *AggregateTable // columns carry the Def. prefix
	PointsDist  *AggregateTable
}

// Features flattens the four tables for one team into a single ordered
// feature set: four factors, team stats, points distribution, then
// defensive team stats. ok is false when the team is missing from any table.
func (ta *TeamAggregates) Features(team string) ([]string, map[string]string, bool) {
	var keys []string
	vals := make(map[string]string)
	for _, tbl := range []*AggregateTable{ta.FourFactors, ta.TeamStats, ta.PointsDist, ta.TeamStatsD} {
		k, v, ok := tbl.Features(team)
		if !ok {
			return nil, nil, false
		}
		for _, key := range k {
			if _, dup := vals[key]; dup {
				continue
			}
			keys = append(keys, key)
			vals[key] = v[key]
		}
	}
	return keys, vals, true
}
