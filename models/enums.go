package models

import (
	"errors"
	"io"
	"strconv"
)

type UserRole string

const (
	UserRolePartner       UserRole = "Partner"
	UserRoleAssociate     UserRole = "Associate"
	UserRoleParalegal     UserRole = "Paralegal"
	UserRoleBusinessOwner UserRole = "BusinessOwner"
	UserRoleAdmin         UserRole = "Admin"
)

// roles whose labor can be recorded in a time entry
func BillerRoles() []UserRole {
	return []UserRole{UserRolePartner, UserRoleAssociate, UserRoleParalegal}
}

func (r UserRole) IsBiller() bool {
	switch r {
	case UserRolePartner, UserRoleAssociate, UserRoleParalegal:
		return true
	}
	return false
}

// roles allowed to approve or reject a pending case
func (r UserRole) CanReviewApprovals() bool {
	return r == UserRolePartner || r == UserRoleBusinessOwner
}

// roles whose new cases skip the approval queue
func (r UserRole) CreatesActiveCases() bool {
	return r == UserRolePartner || r == UserRoleBusinessOwner
}

// convert enum to send response
func (r UserRole) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(r))))
}

// convert input to enum type
func (r *UserRole) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("user role must be string")
	}
	switch str {
	case "Partner":
		*r = UserRolePartner
	case "Associate":
		*r = UserRoleAssociate
	case "Paralegal":
		*r = UserRoleParalegal
	case "BusinessOwner":
		*r = UserRoleBusinessOwner
	case "Admin":
		*r = UserRoleAdmin
	default:
		return errors.New("invalid user role")
	}
	return nil
}

type BillingType string

const (
	BillingTypeHourly   BillingType = "Hourly"
	BillingTypeFixed    BillingType = "Fixed"
	BillingTypeRetainer BillingType = "Retainer"
)

func (t BillingType) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *BillingType) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("billing type must be string")
	}
	switch str {
	case "Hourly":
		*t = BillingTypeHourly
	case "Fixed":
		*t = BillingTypeFixed
	case "Retainer":
		*t = BillingTypeRetainer
	default:
		return errors.New("invalid billing type")
	}
	return nil
}

type RetainerPeriod string

const (
	RetainerPeriodMonthly   RetainerPeriod = "Monthly"
	RetainerPeriodQuarterly RetainerPeriod = "Quarterly"
	RetainerPeriodAnnually  RetainerPeriod = "Annually"
)

// period length in calendar months
func (p RetainerPeriod) Months() int {
	switch p {
	case RetainerPeriodMonthly:
		return 1
	case RetainerPeriodQuarterly:
		return 3
	case RetainerPeriodAnnually:
		return 12
	}
	return 0
}

func (p RetainerPeriod) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(p))))
}

func (p *RetainerPeriod) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("retainer period must be string")
	}
	switch str {
	case "Monthly":
		*p = RetainerPeriodMonthly
	case "Quarterly":
		*p = RetainerPeriodQuarterly
	case "Annually":
		*p = RetainerPeriodAnnually
	default:
		return errors.New("invalid retainer period")
	}
	return nil
}

type CaseStatus string

const (
	CaseStatusPendingApproval CaseStatus = "PendingApproval"
	CaseStatusActive          CaseStatus = "Active"
	CaseStatusOnHold          CaseStatus = "OnHold"
	CaseStatusClosed          CaseStatus = "Closed"
	CaseStatusArchived        CaseStatus = "Archived"
)

// archived cases have a frozen billing configuration
func (s CaseStatus) BillingConfigMutable() bool {
	return s != CaseStatusArchived
}

func (s CaseStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(s))))
}

func (s *CaseStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("case status must be string")
	}
	caseStatuses := map[string]CaseStatus{
		"PendingApproval": CaseStatusPendingApproval,
		"Active":          CaseStatusActive,
		"OnHold":          CaseStatusOnHold,
		"Closed":          CaseStatusClosed,
		"Archived":        CaseStatusArchived,
	}
	*s, ok = caseStatuses[str]
	if !ok {
		return errors.New("invalid case status")
	}
	return nil
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
)

func (s ApprovalStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(s))))
}

func (s *ApprovalStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("approval status must be string")
	}
	switch str {
	case "Pending":
		*s = ApprovalStatusPending
	case "Approved":
		*s = ApprovalStatusApproved
	case "Rejected":
		*s = ApprovalStatusRejected
	default:
		return errors.New("invalid approval status")
	}
	return nil
}

// BillingEventType enumerates the append-only billing ledger events.
type BillingEventType string

const (
	BillingEventInvoiceCreated        BillingEventType = "InvoiceCreated"
	BillingEventInvoiceCancelled      BillingEventType = "InvoiceCancelled"
	BillingEventInvoicePaid           BillingEventType = "InvoicePaid"
	BillingEventFixedAmountChanged    BillingEventType = "FixedAmountChanged"
	BillingEventRetainerAmountChanged BillingEventType = "RetainerAmountChanged"
)

// amount-change events are only consistent with one billing model
func (t BillingEventType) AllowedForBillingType(billingType BillingType) bool {
	switch t {
	case BillingEventFixedAmountChanged:
		return billingType == BillingTypeFixed
	case BillingEventRetainerAmountChanged:
		return billingType == BillingTypeRetainer
	case BillingEventInvoiceCreated, BillingEventInvoiceCancelled, BillingEventInvoicePaid:
		return true
	}
	return false
}

func (t BillingEventType) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *BillingEventType) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("billing event type must be string")
	}
	billingEventTypes := map[string]BillingEventType{
		"InvoiceCreated":        BillingEventInvoiceCreated,
		"InvoiceCancelled":      BillingEventInvoiceCancelled,
		"InvoicePaid":           BillingEventInvoicePaid,
		"FixedAmountChanged":    BillingEventFixedAmountChanged,
		"RetainerAmountChanged": BillingEventRetainerAmountChanged,
	}
	*t, ok = billingEventTypes[str]
	if !ok {
		return errors.New("invalid billing event type")
	}
	return nil
}

// RateType identifies which per-role rate a case_rate_history row records.
type RateType string

const (
	RateTypePartner   RateType = "partner"
	RateTypeAssociate RateType = "associate"
	RateTypeParalegal RateType = "paralegal"
)

func RateTypeForRole(role UserRole) (RateType, bool) {
	switch role {
	case UserRolePartner:
		return RateTypePartner, true
	case UserRoleAssociate:
		return RateTypeAssociate, true
	case UserRoleParalegal:
		return RateTypeParalegal, true
	}
	return "", false
}

func (t RateType) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *RateType) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("rate type must be string")
	}
	switch str {
	case "partner":
		*t = RateTypePartner
	case "associate":
		*t = RateTypeAssociate
	case "paralegal":
		*t = RateTypeParalegal
	default:
		return errors.New("invalid rate type")
	}
	return nil
}

type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "Open"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

func (s InvoiceStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(s))))
}

func (s *InvoiceStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("invoice status must be string")
	}
	switch str {
	case "Open":
		*s = InvoiceStatusOpen
	case "Paid":
		*s = InvoiceStatusPaid
	case "Cancelled":
		*s = InvoiceStatusCancelled
	default:
		return errors.New("invalid invoice status")
	}
	return nil
}
