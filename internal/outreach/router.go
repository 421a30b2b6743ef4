package outreach

import "github.com/jonathan/outreach-agent/internal/types"

// Route picks the message pipeline for a contact. Existing connections, by
// degree or by network import, get the farmer pipeline; everyone else gets hunter.
// Nothing else in the module derives the pipeline on its own.
func Route(degree types.ConnectionDegree, source types.ContactSource) types.Pipeline {
	if degree == types.DegreeFirst || source == types.ContactSourceCSVImport {
		return types.PipelineFarmer
	}
	return types.PipelineHunter
}
