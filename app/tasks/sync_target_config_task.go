package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/gap"
)

type SyncTargetConfigTask struct {
	Task
	TargetConfig *gap.Config
	targetRepo   database.TargetRepository
}

func NewSyncTargetConfigTask(targetName string, targetConfig *gap.Config, targetRepo database.TargetRepository) *SyncTargetConfigTask {
	return &SyncTargetConfigTask{
		Task:         NewTask(TaskTypeSyncTargetConfig, targetName),
		TargetConfig: targetConfig,
		targetRepo:   targetRepo,
	}
}

func (t *SyncTargetConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	domainChanged, err := t.targetRepo.UpsertTarget(
		t.TargetConfig.Name,
		t.TargetConfig.Domain,
		t.TargetConfig.Source,
		t.TargetConfig.Settings.Enabled)
	if err != nil {
		slog.Error("Task failed", "type", "SyncTargetConfig", "target", t.TargetName, "error", err)
		return fmt.Errorf("failed to sync target config to database: %w", err)
	}

	if domainChanged {
		slog.Info("Target domain updated", "target", t.TargetName, "domain", t.TargetConfig.Domain)
	}

	slog.Info("Task completed",
		"type", "SyncTargetConfig",
		"target", t.TargetName,
		"duration", t.GetDuration())

	return nil
}
