package adwords

import (
	"context"
	"fmt"
	"time"
)

// RemovedTimestampLayout formats the suffix appended when an ad group is removed.
const RemovedTimestampLayout = "2006-01-02 15:04:05"

// AdGroupService is the lookup and mutate surface needed to remove an ad group.
// *AdGroupsAPI implements it.
type AdGroupService interface {
	GetWithContext(ctx context.Context, selector Selector) (AdGroupPage, error)
	MutateWithContext(ctx context.Context, operations []AdGroupOperation) (*AdGroupReturnValue, error)
}

// RemoveResult reports the outcome of RemoveAdGroup.
type RemoveResult struct {
	// AdGroup is the server's echo of the mutated ad group; nil when the
	// service returned no value.
	AdGroup *AdGroup
}

// Updated reports whether the service acknowledged the change.
func (r RemoveResult) Updated() bool {
	return r.AdGroup != nil
}

// Message renders the confirmation line.
func (r RemoveResult) Message() string {
	if r.AdGroup == nil {
		return "No ad group was updated."
	}
	return fmt.Sprintf("Ad group ID %d was successfully removed and renamed to '%s'.", r.AdGroup.ID, r.AdGroup.Name)
}

// RemovedName appends the removal timestamp to name so a re-created ad group
// can reuse the original name.
func RemovedName(name string, at time.Time) string {
	return name + " (removed on " + at.Format(RemovedTimestampLayout) + ")"
}

// RemoveAdGroup looks up adGroupID, then sets it REMOVED under a timestamped
// name in a single SET operation. A missing ad group yields *NotFoundError
// and no mutate call is made.
func RemoveAdGroup(ctx context.Context, svc AdGroupService, adGroupID int64, now func() time.Time) (RemoveResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if adGroupID <= 0 {
		return RemoveResult{}, fmt.Errorf("ad group ID must be positive, got %d", adGroupID)
	}
	if now == nil {
		now = time.Now
	}

	page, err := svc.GetWithContext(ctx, Selector{
		Fields:     []string{FieldID, FieldName},
		Predicates: []Predicate{IDEquals(adGroupID)},
	})
	if err != nil {
		return RemoveResult{}, fmt.Errorf("look up ad group %d: %w", adGroupID, err)
	}
	if len(page.Entries) == 0 {
		return RemoveResult{}, &NotFoundError{Entity: "Ad group", ID: adGroupID}
	}

	op := AdGroupOperation{
		Operator: OperatorSet,
		Operand: AdGroup{
			ID:     adGroupID,
			Name:   RemovedName(page.Entries[0].Name, now()),
			Status: AdGroupRemoved,
		},
	}
	rval, err := svc.MutateWithContext(ctx, []AdGroupOperation{op})
	if err != nil {
		return RemoveResult{}, fmt.Errorf("remove ad group %d: %w", adGroupID, err)
	}
	if rval == nil || len(rval.Value) == 0 {
		return RemoveResult{}, nil
	}
	echoed := rval.Value[0]
	return RemoveResult{AdGroup: &echoed}, nil
}
