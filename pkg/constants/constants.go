package constants

// Change types seeded by the migrations. Job-update submissions must use one of them.
const (
	ChangeTypeEntry     = "Eintritt"
	ChangeTypeExtension = "Verlängerung"
	ChangeTypeTransfer  = "Wechsel"
	ChangeTypeChange    = "Änderung"
	ChangeTypeExit      = "Austritt"
)

var ChangeTypes = []string{
	ChangeTypeEntry,
	ChangeTypeExtension,
	ChangeTypeTransfer,
	ChangeTypeChange,
	ChangeTypeExit,
}

func IsChangeType(name string) bool {
	for _, ct := range ChangeTypes {
		if ct == name {
			return true
		}
	}
	return false
}

const (
	EmployeeTypeIntern = "intern"
	EmployeeTypeExtern = "extern"
)

// Service labels as they appear on submitted orders.
const (
	ServicePhoneNumber   = "Telefonnummer"
	ServiceDoorSign      = "Türschild"
	ServiceBusinessCards = "Visitenkarten"
)

type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var AdditionalOptions = []Option{
	{ID: "telefonnummer", Name: ServicePhoneNumber, Description: "Firmennummer mit persönlicher Durchwahl"},
	{ID: "tuerschild", Name: ServiceDoorSign, Description: "Namensschild für Büro oder Arbeitsplatz"},
	{ID: "visitenkarten", Name: ServiceBusinessCards, Description: "Persönliche Visitenkarten mit Firmenlayout"},
}

var PhoneTypes = []Option{
	{ID: "standard", Name: "Standard", Description: "Standard Telefon mit Grundfunktionen"},
	{ID: "komfort", Name: "Komfort", Description: "Komfort Telefon mit erweiterten Funktionen"},
}

// TicketPrefix precedes the order id in the ticket reference returned to submitters.
const TicketPrefix = "JU-"

// Cache keys for the public read surface.
const (
	CacheKeyLookupList   = "lookup:%s:list"
	CacheKeyHardwareList = "hardware:list"
	CacheKeySoftwareList = "software:list"
	CacheKeySapRoleList  = "sap_roles:list"
	CacheKeySupervisors  = "employees:supervisors"
)
