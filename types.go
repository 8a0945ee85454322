package adwords

import "strconv"

// AdGroupStatus enum values.
type AdGroupStatus string

const (
	AdGroupEnabled AdGroupStatus = "ENABLED"
	AdGroupPaused  AdGroupStatus = "PAUSED"
	AdGroupRemoved AdGroupStatus = "REMOVED"
)

// Operator is the mutate operation verb.
type Operator string

const (
	OperatorAdd    Operator = "ADD"
	OperatorSet    Operator = "SET"
	OperatorRemove Operator = "REMOVE"
)

// PredicateOperator is the comparison applied by a selector predicate.
type PredicateOperator string

const (
	PredicateEquals      PredicateOperator = "EQUALS"
	PredicateNotEquals   PredicateOperator = "NOT_EQUALS"
	PredicateIn          PredicateOperator = "IN"
	PredicateNotIn       PredicateOperator = "NOT_IN"
	PredicateContains    PredicateOperator = "CONTAINS"
	PredicateGreaterThan PredicateOperator = "GREATER_THAN"
	PredicateLessThan    PredicateOperator = "LESS_THAN"
)

// SortOrder for selector orderings.
type SortOrder string

const (
	SortAscending  SortOrder = "ASCENDING"
	SortDescending SortOrder = "DESCENDING"
)

// Selectable AdGroupService fields.
const (
	FieldID           = "Id"
	FieldName         = "Name"
	FieldStatus       = "Status"
	FieldCampaignID   = "CampaignId"
	FieldCampaignName = "CampaignName"
)

// Predicate filters selector results.
type Predicate struct {
	Field    string            `json:"field"`
	Operator PredicateOperator `json:"operator"`
	Values   []string          `json:"values"`
}

// OrderBy sorts selector results.
type OrderBy struct {
	Field     string    `json:"field"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`
}

// Paging bounds a selector result window.
type Paging struct {
	StartIndex    int `json:"startIndex"`
	NumberResults int `json:"numberResults"`
}

// Selector is the query descriptor for get calls.
type Selector struct {
	Fields     []string    `json:"fields"`
	Predicates []Predicate `json:"predicates,omitempty"`
	Ordering   []OrderBy   `json:"ordering,omitempty"`
	Paging     *Paging     `json:"paging,omitempty"`
}

// IDEquals builds the predicate matching a single entity id.
func IDEquals(id int64) Predicate {
	return Predicate{
		Field:    FieldID,
		Operator: PredicateEquals,
		Values:   []string{strconv.FormatInt(id, 10)},
	}
}

// AdGroup represents an ad group resource. Fields not requested by the
// selector are left at their zero value.
type AdGroup struct {
	ID           int64         `json:"id,omitempty"`
	CampaignID   int64         `json:"campaignId,omitempty"`
	CampaignName string        `json:"campaignName,omitempty"`
	Name         string        `json:"name,omitempty"`
	Status       AdGroupStatus `json:"status,omitempty"`
}

// AdGroupPage is the result of AdGroupService.get.
type AdGroupPage struct {
	TotalNumEntries int       `json:"totalNumEntries"`
	Entries         []AdGroup `json:"entries"`
}

// AdGroupOperation is a single mutate operation.
type AdGroupOperation struct {
	Operator Operator `json:"operator"`
	Operand  AdGroup  `json:"operand"`
}

// AdGroupReturnValue is the result of AdGroupService.mutate.
type AdGroupReturnValue struct {
	Value []AdGroup `json:"value"`
}

type getRequest struct {
	Selector Selector `json:"serviceSelector"`
}

type mutateRequest struct {
	Operations []AdGroupOperation `json:"operations"`
}

type pageEnvelope struct {
	Rval *AdGroupPage `json:"rval"`
}

type returnValueEnvelope struct {
	Rval *AdGroupReturnValue `json:"rval"`
}
