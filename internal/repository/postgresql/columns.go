package postgresql

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// Time-of-day columns are TIME; they travel as "HH:MM:SS" text.

func timeOfDayParam(t *clock.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func scanTimeOfDay(s *string) (*clock.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := clock.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Approval stage values are stored as a JSONB object keyed by stage, next to
// the derived pending_stage and rejected columns used for filtering.

type stageColumns struct {
	status       []byte
	pendingStage *string
	rejected     bool
}

func stageParams(chain approval.Chain, values approval.Values) (stageColumns, error) {
	raw, err := json.Marshal(chain.ToMap(values))
	if err != nil {
		return stageColumns{}, fmt.Errorf("failed to marshal %s status: %w", chain.Kind, err)
	}
	cols := stageColumns{status: raw, rejected: chain.IsRejected(values)}
	if stage, ok := chain.PendingStage(values); ok {
		cols.pendingStage = &stage
	}
	return cols, nil
}

func scanStages(chain approval.Chain, raw []byte) (approval.Values, error) {
	var m map[string]approval.Value
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s status: %w", chain.Kind, err)
	}
	return chain.FromMap(m)
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
