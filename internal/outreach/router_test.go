package outreach

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outreach-agent/internal/types"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		degree types.ConnectionDegree
		source types.ContactSource
		want   types.Pipeline
	}{
		{types.DegreeFirst, types.ContactSourceApollo, types.PipelineFarmer},
		{types.DegreeSecond, types.ContactSourceCSVImport, types.PipelineFarmer},
		{types.DegreeFirst, types.ContactSourceCSVImport, types.PipelineFarmer},
		{types.DegreeSecond, types.ContactSourceApollo, types.PipelineHunter},
		{types.DegreeThird, types.ContactSourceApollo, types.PipelineHunter},
		{"", "", types.PipelineHunter},
	}

	for _, tt := range tests {
		t.Run(string(tt.degree)+"/"+string(tt.source), func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.degree, tt.source))
		})
	}
}
