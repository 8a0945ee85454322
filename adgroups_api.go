package adwords

import (
	"context"
	"fmt"
)

const (
	adGroupServiceName = "AdGroupService"
	defaultPageSize    = 500
)

// AdGroupsAPI wraps AdGroupService.
type AdGroupsAPI struct {
	cfg        Config
	httpClient *httpClient
}

func newAdGroupsAPI(cfg Config, httpClient *httpClient) *AdGroupsAPI {
	return &AdGroupsAPI{cfg: cfg, httpClient: httpClient}
}

// Get returns the ad groups matching selector.
func (a *AdGroupsAPI) Get(selector Selector) (AdGroupPage, error) {
	return a.GetWithContext(context.Background(), selector)
}

// GetWithContext returns the ad groups matching selector with a caller-supplied context.
func (a *AdGroupsAPI) GetWithContext(ctx context.Context, selector Selector) (AdGroupPage, error) {
	if len(selector.Fields) == 0 {
		return AdGroupPage{}, fmt.Errorf("selector must request at least one field")
	}
	var resp pageEnvelope
	if err := a.httpClient.call(ctx, adGroupServiceName, "get", getRequest{Selector: selector}, &resp, true); err != nil {
		return AdGroupPage{}, fmt.Errorf("get ad groups: %w", err)
	}
	if resp.Rval == nil {
		return AdGroupPage{}, nil
	}
	return *resp.Rval, nil
}

// GetAll pages through every ad group matching selector. The selector's own
// paging is replaced; pageSize <= 0 uses the default page size.
func (a *AdGroupsAPI) GetAll(selector Selector, pageSize int) ([]AdGroup, error) {
	return a.GetAllWithContext(context.Background(), selector, pageSize)
}

// GetAllWithContext pages through every matching ad group with a caller-supplied context.
func (a *AdGroupsAPI) GetAllWithContext(ctx context.Context, selector Selector, pageSize int) ([]AdGroup, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	var all []AdGroup
	for start := 0; ; start += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		selector.Paging = &Paging{StartIndex: start, NumberResults: pageSize}
		page, err := a.GetWithContext(ctx, selector)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Entries...)
		if len(page.Entries) == 0 || start+pageSize >= page.TotalNumEntries {
			return all, nil
		}
	}
}

// Mutate applies operations. It returns nil when the service echoed no value.
// Mutations are never retried.
func (a *AdGroupsAPI) Mutate(operations []AdGroupOperation) (*AdGroupReturnValue, error) {
	return a.MutateWithContext(context.Background(), operations)
}

// MutateWithContext applies operations with a caller-supplied context.
func (a *AdGroupsAPI) MutateWithContext(ctx context.Context, operations []AdGroupOperation) (*AdGroupReturnValue, error) {
	if len(operations) == 0 {
		return nil, fmt.Errorf("operations cannot be empty")
	}
	for i, op := range operations {
		if op.Operator == "" {
			return nil, fmt.Errorf("operation %d has no operator", i)
		}
	}
	var resp returnValueEnvelope
	if err := a.httpClient.call(ctx, adGroupServiceName, "mutate", mutateRequest{Operations: operations}, &resp, false); err != nil {
		return nil, fmt.Errorf("mutate ad groups: %w", err)
	}
	if resp.Rval == nil || len(resp.Rval.Value) == 0 {
		return nil, nil
	}
	return resp.Rval, nil
}

// Remove marks an ad group REMOVED and renames it with a removal timestamp.
func (a *AdGroupsAPI) Remove(adGroupID int64) (RemoveResult, error) {
	return a.RemoveWithContext(context.Background(), adGroupID)
}

// RemoveWithContext removes an ad group with a caller-supplied context.
func (a *AdGroupsAPI) RemoveWithContext(ctx context.Context, adGroupID int64) (RemoveResult, error) {
	return RemoveAdGroup(ctx, a, adGroupID, a.cfg.now)
}
