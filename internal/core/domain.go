package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	House      PropertyType = "house"
	Flat       PropertyType = "flat"
	HMO        PropertyType = "hmo"
	Room       PropertyType = "room"
	Office     PropertyType = "office"
	Retail     PropertyType = "retail"
	Restaurant PropertyType = "restaurant"
	Warehouse  PropertyType = "warehouse"
	MixedUse   PropertyType = "mixed_use"
)

const (
	Residential Category = "residential"
	Commercial  Category = "commercial"
)

const (
	GasSafety          ComplianceType = "gas_safety"
	EICR               ComplianceType = "eicr"
	EPC                ComplianceType = "epc"
	SmokeCOAlarm       ComplianceType = "smoke_co_alarm"
	DepositProtection  ComplianceType = "deposit_protection"
	RightToRent        ComplianceType = "right_to_rent"
	Legionella         ComplianceType = "legionella"
	PropertyLicence    ComplianceType = "property_licence"
	FireSafety         ComplianceType = "fire_safety"
	LandlordInsurance  ComplianceType = "landlord_insurance"
	RentAgreement      ComplianceType = "rent_agreement"
	FoodHygiene        ComplianceType = "food_hygiene"
	PremisesLicence    ComplianceType = "premises_licence"
	AsbestosSurvey     ComplianceType = "asbestos_survey"
	FireRiskAssessment ComplianceType = "fire_risk_assessment"
	CommercialEPC      ComplianceType = "commercial_epc"
)

const (
	StatusValid   ComplianceStatus = "valid"
	StatusDueSoon ComplianceStatus = "due_soon"
	StatusOverdue ComplianceStatus = "overdue"
	StatusNotSet  ComplianceStatus = "not_set"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	Weekly  RentFrequency = "weekly"
	Monthly RentFrequency = "monthly"
)

type (
	PropertyType     string
	Category         string
	ComplianceType   string
	ComplianceStatus string
	EntryType        string
	RentFrequency    string

	// Date is a calendar day. The zero value is not a valid date.
	Date struct {
		time.Time
	}

	Property struct {
		ID       string
		Nickname string
		Type     PropertyType
		// EnabledComplianceTypes overrides the category default when non-empty.
		EnabledComplianceTypes []ComplianceType
		Active                 bool
	}

	ComplianceRecord struct {
		ID            string
		PropertyID    string
		Type          ComplianceType
		DueDate       *Date // nil means not set
		LastCompleted *Date
		// Status is derived from DueDate and a reference day; stored values may be stale.
		Status ComplianceStatus
		// ReminderDays is persisted for the owner but not used when deriving Status.
		ReminderDays int
		Notes        string
	}

	MoneyEntry struct {
		ID          string
		PropertyID  string // empty for portfolio-wide entries
		Type        EntryType
		Category    MoneyCategory
		Amount      decimal.Decimal
		Date        Date
		Description string
		// TaxYear and Quarter are assigned from Date when the entry is recorded.
		TaxYear string
		Quarter int
	}

	Tenancy struct {
		ID         string
		PropertyID string
		TenantName string
		RentAmount decimal.Decimal
		Frequency  RentFrequency
		Active     bool
	}
)

var (
	ErrEmptyPropertyID       = errors.New("empty property id")
	ErrEmptyNickname         = errors.New("empty nickname")
	ErrUnknownPropertyType   = errors.New("unknown property type")
	ErrUnknownComplianceType = errors.New("unknown compliance type")
	ErrInvalidEntryType      = errors.New("invalid entry type")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidReminderDays   = errors.New("invalid reminder days")
	ErrInvalidRentFrequency  = errors.New("invalid rent frequency")
	ErrCategoryTypeMismatch  = errors.New("money category does not match entry type")
	ErrEmptyTenantName       = errors.New("empty tenant name")
	ErrDescriptionTooLong    = errors.New("description too long (max 200 characters)")
	ErrUnknownMoneyCategory  = errors.New("unknown money category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateFormat is the ISO layout used for storage and export.
const DateFormat = "2006-01-02"

func (d Date) String() string {
	return d.Format(DateFormat)
}

// DaysUntil returns the number of calendar days from d to other. It is
// negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t PropertyType) IsValid() bool {
	switch t {
	case House, Flat, HMO, Room, Office, Retail, Restaurant, Warehouse, MixedUse:
		return true
	default:
		return false
	}
}

func (t PropertyType) Label() string {
	switch t {
	case House:
		return "House"
	case Flat:
		return "Flat"
	case HMO:
		return "HMO"
	case Room:
		return "Room"
	case Office:
		return "Office"
	case Retail:
		return "Retail / Shop"
	case Restaurant:
		return "Restaurant / Takeaway"
	case Warehouse:
		return "Warehouse"
	case MixedUse:
		return "Mixed Use"
	default:
		return string(t)
	}
}

// ComplianceTypes returns every known compliance kind in catalog order.
func ComplianceTypes() []ComplianceType {
	return append([]ComplianceType(nil), complianceTypes...)
}

var complianceTypes = []ComplianceType{
	GasSafety, EICR, EPC, SmokeCOAlarm, DepositProtection,
	RightToRent, Legionella, PropertyLicence, FireSafety,
	LandlordInsurance, RentAgreement, FoodHygiene, PremisesLicence,
	AsbestosSurvey, FireRiskAssessment, CommercialEPC,
}

func (t ComplianceType) IsValid() bool {
	for _, known := range complianceTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t ComplianceType) Label() string {
	switch t {
	case GasSafety:
		return "Gas Safety (CP12)"
	case EICR:
		return "EICR"
	case EPC:
		return "EPC"
	case SmokeCOAlarm:
		return "Smoke & CO Alarms"
	case DepositProtection:
		return "Deposit Protection"
	case RightToRent:
		return "Right to Rent"
	case Legionella:
		return "Legionella Risk Assessment"
	case PropertyLicence:
		return "Property Licence"
	case FireSafety:
		return "Fire Safety"
	case LandlordInsurance:
		return "Landlord Insurance"
	case RentAgreement:
		return "Rent Agreement"
	case FoodHygiene:
		return "Food Hygiene Rating"
	case PremisesLicence:
		return "Premises Licence"
	case AsbestosSurvey:
		return "Asbestos Survey"
	case FireRiskAssessment:
		return "Fire Risk Assessment"
	case CommercialEPC:
		return "Commercial EPC (DEC)"
	default:
		return string(t)
	}
}

func (s ComplianceStatus) IsValid() bool {
	switch s {
	case StatusValid, StatusDueSoon, StatusOverdue, StatusNotSet:
		return true
	default:
		return false
	}
}

func (s ComplianceStatus) Label() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusDueSoon:
		return "Due Soon"
	case StatusOverdue:
		return "Overdue"
	default:
		return "Not Set"
	}
}

func (t EntryType) IsValid() bool {
	return t == Income || t == Expense
}

func (f RentFrequency) IsValid() bool {
	return f == Weekly || f == Monthly
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.Nickname) == "" {
		return ErrEmptyNickname
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPropertyType, p.Type)
	}
	for _, ct := range p.EnabledComplianceTypes {
		if !ct.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownComplianceType, ct)
		}
	}
	return nil
}

func (r ComplianceRecord) Validate() error {
	if strings.TrimSpace(r.PropertyID) == "" {
		return ErrEmptyPropertyID
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownComplianceType, r.Type)
	}
	if r.DueDate != nil {
		if err := r.DueDate.Validate(); err != nil {
			return fmt.Errorf("due date: %w", err)
		}
	}
	if r.ReminderDays < 0 || r.ReminderDays > 365 {
		return ErrInvalidReminderDays
	}
	return nil
}

func (e MoneyEntry) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntryType, e.Type)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownMoneyCategory, e.Category)
	}
	if e.Category.EntryType() != e.Type {
		return ErrCategoryTypeMismatch
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (t Tenancy) Validate() error {
	if strings.TrimSpace(t.PropertyID) == "" {
		return ErrEmptyPropertyID
	}
	if strings.TrimSpace(t.TenantName) == "" {
		return ErrEmptyTenantName
	}
	if !t.RentAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Frequency.IsValid() {
		return ErrInvalidRentFrequency
	}
	return nil
}
