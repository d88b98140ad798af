package api

import (
	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/gap"
	"github.com/openkeywords/keyword-comb/app/tasks"
)

type Handler struct {
	targetRepo      database.TargetRepository
	analysisRepo    database.AnalysisRepository
	opportunityRepo database.OpportunityRepository
	configCache     *gap.ConfigCache
	comparisonAPI   gap.ComparisonAPI
	metrics         tasks.MetricsAPI
	scheduler       tasks.TaskSchedulerInterface
}
