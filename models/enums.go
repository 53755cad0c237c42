package models

// Enum types implement Valid so request validation can reject unknown values
// before they reach the database.

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	return f.Months() > 0
}

// Months is the length of one period in calendar months.
func (f Frequency) Months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	}
	return 0
}

type FileStatus string

const (
	FileActive    FileStatus = "active"
	FileCompleted FileStatus = "completed"
	FileCancelled FileStatus = "cancelled"
	FileDefaulted FileStatus = "defaulted"
)

func (s FileStatus) Valid() bool {
	switch s {
	case FileActive, FileCompleted, FileCancelled, FileDefaulted:
		return true
	}
	return false
}

// Closed reports whether the file accepts no further payments.
func (s FileStatus) Closed() bool {
	return s == FileCompleted || s == FileCancelled
}

// CanBecome reports whether a manual status change from s to to is allowed.
// Completion is reached through payments only.
func (s FileStatus) CanBecome(to FileStatus) bool {
	switch s {
	case FileActive:
		return to == FileDefaulted || to == FileCancelled
	case FileDefaulted:
		return to == FileActive || to == FileCancelled
	}
	return false
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
	InstallmentWaived  InstallmentStatus = "waived"
)

func (s InstallmentStatus) Valid() bool {
	switch s {
	case InstallmentPending, InstallmentPaid, InstallmentOverdue, InstallmentWaived:
		return true
	}
	return false
}

// Settled is true for the terminal states.
func (s InstallmentStatus) Settled() bool {
	return s == InstallmentPaid || s == InstallmentWaived
}

type PaymentType string

const (
	PaymentInstallment PaymentType = "installment"
	PaymentDownPayment PaymentType = "down_payment"
	PaymentToken       PaymentType = "token"
	PaymentFull        PaymentType = "full_payment"
	PaymentLateFee     PaymentType = "late_fee"
	PaymentTransferFee PaymentType = "transfer_fee"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentInstallment, PaymentDownPayment, PaymentToken, PaymentFull, PaymentLateFee, PaymentTransferFee:
		return true
	}
	return false
}

// IsFee is true for charges that never count toward the file's paid amount.
func (t PaymentType) IsFee() bool {
	return t == PaymentLateFee || t == PaymentTransferFee
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOnline       PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCheque, MethodBankTransfer, MethodOnline:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentBounced   PaymentStatus = "bounced"
	PaymentReversed  PaymentStatus = "reversed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentCompleted, PaymentPending, PaymentBounced, PaymentReversed:
		return true
	}
	return false
}

type RecordStatus string

const (
	StatusActive   RecordStatus = "active"
	StatusInactive RecordStatus = "inactive"
)

func (s RecordStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// InventoryStatus tracks whether a plot or property can still be sold.
type InventoryStatus string

const (
	InventoryAvailable InventoryStatus = "available"
	InventoryBooked    InventoryStatus = "booked"
	InventorySold      InventoryStatus = "sold"
)

func (s InventoryStatus) Valid() bool {
	switch s {
	case InventoryAvailable, InventoryBooked, InventorySold:
		return true
	}
	return false
}

type PropertyType string

const (
	PropertyHouse  PropertyType = "house"
	PropertyFlat   PropertyType = "flat"
	PropertyShop   PropertyType = "shop"
	PropertyOffice PropertyType = "office"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyHouse, PropertyFlat, PropertyShop, PropertyOffice:
		return true
	}
	return false
}

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost:
		return true
	}
	return false
}

type DealStatus string

const (
	DealPending   DealStatus = "pending"
	DealConfirmed DealStatus = "confirmed"
	DealConverted DealStatus = "converted"
	DealCancelled DealStatus = "cancelled"
)

func (s DealStatus) Valid() bool {
	switch s {
	case DealPending, DealConfirmed, DealConverted, DealCancelled:
		return true
	}
	return false
}

// CanBecome covers manual changes; conversion to a file sets DealConverted.
func (s DealStatus) CanBecome(to DealStatus) bool {
	switch s {
	case DealPending:
		return to == DealConfirmed || to == DealCancelled
	case DealConfirmed:
		return to == DealPending || to == DealCancelled
	}
	return false
}
