package service

import (
	"github.com/montanaflynn/stats"

	"github.com/propscore/leadscore/backend/model"
)

// ComputeStats derives aggregate figures from a ledger snapshot. Pure: the
// result depends only on the snapshot, and an empty snapshot yields zeroes
// rather than a division fault.
func ComputeStats(snapshot []model.ScoredLead) model.Stats {
	if len(snapshot) == 0 {
		return model.Stats{}
	}

	initial := make([]float64, 0, len(snapshot))
	reranked := make([]float64, 0, len(snapshot))
	highIntent := 0

	for _, lead := range snapshot {
		initial = append(initial, lead.InitialScore)
		reranked = append(reranked, lead.RerankedScore)
		if lead.RerankedScore >= model.HighIntentThreshold {
			highIntent++
		}
	}

	avgInitial, _ := stats.Mean(initial)
	avgReranked, _ := stats.Mean(reranked)

	return model.Stats{
		TotalLeads:       len(snapshot),
		HighIntentLeads:  highIntent,
		AvgInitialScore:  avgInitial,
		AvgRerankedScore: avgReranked,
	}
}
