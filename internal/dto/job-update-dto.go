package dto

// NamedSelectionDTO is a catalog item picked on the request form.
type NamedSelectionDTO struct {
	ID   uint64 `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,not_blank"`
}

type SapSelectionDTO struct {
	ID   uint64 `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,not_blank"`
	Code string `json:"code" validate:"required,not_blank"`
}

type AdditionalOptionsDTO struct {
	Telefonnummer *bool `json:"telefonnummer"`
	Tuerschild    *bool `json:"tuerschild"`
	Visitenkarten *bool `json:"visitenkarten"`
}

// JobUpdateDTO is the onboarding/offboarding/change request form.
type JobUpdateDTO struct {
	Vorname            string                `json:"vorname" validate:"required,not_blank,max=255"`
	Nachname           string                `json:"nachname" validate:"required,not_blank,max=255"`
	EmployerType       *bool                 `json:"employerType" validate:"required"`
	UpdateType         string                `json:"updateType" validate:"required,change_type"`
	ITUserName         *string               `json:"itUserName" validate:"omitempty,max=255"`
	Bereich            *string               `json:"bereich" validate:"omitempty,max=255"`
	Sachbereich        *string               `json:"sachbereich" validate:"omitempty,max=255"`
	Funktion           *string               `json:"funktion" validate:"omitempty,max=255"`
	Position           *string               `json:"position" validate:"omitempty,max=255"`
	Vorgesetzt         *string               `json:"vorgesetzt" validate:"omitempty,max=255"`
	Eintritt           *string               `json:"eintritt" validate:"omitempty,iso_date"`
	Frist              *string               `json:"frist" validate:"omitempty,iso_date"`
	Refprofil          []NamedSelectionDTO   `json:"refprofil" validate:"omitempty,dive"`
	AdditionalHardware []NamedSelectionDTO   `json:"additionalHardware" validate:"omitempty,dive"`
	AdditionalSoftware []NamedSelectionDTO   `json:"additionalSoftware" validate:"omitempty,dive"`
	SapProfiles        []SapSelectionDTO     `json:"sapProfiles" validate:"omitempty,dive"`
	SelectedSap        *bool                 `json:"selectedSap"`
	AdditionalOptions  *AdditionalOptionsDTO `json:"additionalOptions"`
}

type JobUpdateEmployeeDTO struct {
	Name        string  `json:"name"`
	Typ         string  `json:"typ"`
	UpdateTyp   string  `json:"update_typ"`
	ITUsername  *string `json:"it_username"`
	Bereich     *string `json:"bereich"`
	Sachbereich *string `json:"sachbereich"`
	Funktion    *string `json:"funktion"`
	Position    *string `json:"position"`
	Vorgesetzt  *string `json:"vorgesetzt"`
	Eintritt    *string `json:"eintritt"`
	Frist       *string `json:"frist"`
}

type JobUpdateSummaryDTO struct {
	ReferenzprofileAnzahl int `json:"referenzprofile_anzahl"`
	HardwareAnzahl        int `json:"hardware_anzahl"`
	SoftwareAnzahl        int `json:"software_anzahl"`
	SapProfileAnzahl      int `json:"sap_profile_anzahl"`
	ServicesAnzahl        int `json:"services_anzahl"`
}

type JobUpdateDataDTO struct {
	Mitarbeiter     JobUpdateEmployeeDTO `json:"mitarbeiter"`
	Referenzprofile []NamedSelectionDTO  `json:"referenzprofile"`
	Hardware        []NamedSelectionDTO  `json:"hardware"`
	Software        []NamedSelectionDTO  `json:"software"`
	SapProfiles     []SapSelectionDTO    `json:"sap_profiles"`
	Services        []string             `json:"services"`
	Zusammenfassung JobUpdateSummaryDTO  `json:"zusammenfassung"`
}

type JobUpdateResponseDTO struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Data     JobUpdateDataDTO `json:"data"`
	TicketID string           `json:"ticket_id"`
	OrderID  uint64           `json:"order_id"`
}
