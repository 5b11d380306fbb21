// internal/intent/types.go
package intent

import (
	"errors"
	"fmt"
)

// Request is the loosely structured business-setup request as collected
// upstream. Every field is optional to the classifier; the worker and CLI
// boundaries require company_name.
type Request struct {
	CompanyName        string   `json:"company_name,omitempty" validate:"required,max=200"`
	CompanyType        string   `json:"company_type,omitempty" validate:"max=200"`
	Industry           string   `json:"industry,omitempty" validate:"max=200"`
	EntryGoals         []string `json:"entry_goals,omitempty" validate:"dive,max=500"`
	TaxConsiderations  []string `json:"tax_considerations,omitempty" validate:"dive,max=500"`
	TimelinePreference string   `json:"timeline_preference,omitempty" validate:"max=500"`
	UrgencyLevel       string   `json:"urgency_level,omitempty" validate:"max=100"`
	PreferredStructure string   `json:"preferred_structure,omitempty" validate:"max=200"`
	AdditionalContext  string   `json:"additional_context,omitempty" validate:"max=5000"`
}

type Kind string

const (
	KindSetup      Kind = "SETUP"
	KindAdvisory   Kind = "ADVISORY"
	KindCompliance Kind = "COMPLIANCE"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSetup, KindAdvisory, KindCompliance:
		return true
	}
	return false
}

// EntityType is optional; the zero value means unset.
type EntityType string

const (
	EntityUnset   EntityType = ""
	EntityBV      EntityType = "BV"
	EntityBranch  EntityType = "BRANCH"
	EntityHolding EntityType = "HOLDING"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityUnset, EntityBV, EntityBranch, EntityHolding:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// IndustryContext is optional; the zero value means unset.
type IndustryContext string

const (
	IndustryUnset     IndustryContext = ""
	IndustryTech      IndustryContext = "TECH"
	IndustryFinancial IndustryContext = "FINANCIAL"
	IndustryGeneral   IndustryContext = "GENERAL"
)

func (i IndustryContext) Valid() bool {
	switch i {
	case IndustryUnset, IndustryTech, IndustryFinancial, IndustryGeneral:
		return true
	}
	return false
}

// Record is the classified intent. IsHolding and MustBeBV are deliberately
// independent; the planner resolves the combination by letting holding win.
type Record struct {
	IsHolding       bool            `json:"is_holding"`
	MustBeBV        bool            `json:"must_be_bv"`
	Intent          Kind            `json:"intent"`
	EntityType      EntityType      `json:"entity_type,omitempty"`
	Urgency         Urgency         `json:"urgency"`
	IndustryContext IndustryContext `json:"industry_context,omitempty"`
}

var ErrInconsistentIntent = errors.New("entity_type contradicts intent flags")

// Validate checks the enums and that entity_type agrees with the flags:
// BV requires must_be_bv, HOLDING requires is_holding and BRANCH requires
// neither.
func (r Record) Validate() error {
	if !r.Intent.Valid() {
		return fmt.Errorf("intent %q is not one of SETUP, ADVISORY, COMPLIANCE", r.Intent)
	}
	if !r.Urgency.Valid() {
		return fmt.Errorf("urgency %q is not one of HIGH, MEDIUM, LOW", r.Urgency)
	}
	if !r.EntityType.Valid() {
		return fmt.Errorf("entity_type %q is not one of BV, BRANCH, HOLDING", r.EntityType)
	}
	if !r.IndustryContext.Valid() {
		return fmt.Errorf("industry_context %q is not one of TECH, FINANCIAL, GENERAL", r.IndustryContext)
	}

	switch r.EntityType {
	case EntityBV:
		if !r.MustBeBV {
			return fmt.Errorf("%w: BV without must_be_bv", ErrInconsistentIntent)
		}
	case EntityHolding:
		if !r.IsHolding {
			return fmt.Errorf("%w: HOLDING without is_holding", ErrInconsistentIntent)
		}
	case EntityBranch:
		if r.MustBeBV || r.IsHolding {
			return fmt.Errorf("%w: BRANCH with must_be_bv or is_holding", ErrInconsistentIntent)
		}
	}
	return nil
}

// Fields flattens the record for structured logging.
func (r Record) Fields() map[string]interface{} {
	return map[string]interface{}{
		"is_holding":       r.IsHolding,
		"must_be_bv":       r.MustBeBV,
		"intent":           string(r.Intent),
		"entity_type":      string(r.EntityType),
		"urgency":          string(r.Urgency),
		"industry_context": string(r.IndustryContext),
	}
}
