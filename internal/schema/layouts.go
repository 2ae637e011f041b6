package schema

import "frontdesk-rental-backend/internal/domain"

const (
	VersionLegacy  = "v1"
	VersionCurrent = "v2"

	CurrentVersion = VersionCurrent
)

// Rentals sheet layouts. v2 moved comeFrom next to the customer columns, dropped
// the storage staff column and added the onsen demographic breakdown.
var builtinLayouts = map[string]map[string]string{
	VersionLegacy: {
		domain.FieldRentalID:            "A",
		domain.FieldStatus:              "B",
		domain.FieldSubmittedAt:         "C",
		domain.FieldLastUpdated:         "D",
		domain.FieldCustomerName:        "E",
		domain.FieldCustomerContact:     "F",
		domain.FieldDocumentType:        "G",
		domain.FieldServiceType:         "H",
		domain.FieldRentalPlan:          "I",
		domain.FieldTotalPrice:          "J",
		domain.FieldExpectedReturn:      "K",
		domain.FieldAgreement:           "L",
		domain.FieldCheckInStaff:        "M",
		domain.FieldCheckedInAt:         "N",
		domain.FieldPhotoFileID:         "O",
		domain.FieldVerified:            "P",
		domain.FieldStorageStaff:        "Q",
		domain.FieldStoredAt:            "R",
		domain.FieldReturnedAt:          "S",
		domain.FieldReturnStaff:         "T",
		domain.FieldGoodCondition:       "U",
		domain.FieldReturnNotes:         "V",
		domain.FieldIsLate:              "W",
		domain.FieldMinutesLate:         "X",
		domain.FieldTroubleNotes:        "Y",
		domain.FieldTroubleResolved:     "Z",
		domain.FieldDamageReported:      "AA",
		domain.FieldRepairRequired:      "AB",
		domain.FieldReplacementRequired: "AC",
		domain.FieldBikeCount:           "AD",
		domain.FieldBikeNumber:          "AE",
		domain.FieldOnsenKeyNumber:      "AF",
		domain.FieldLuggageCount:        "AG",
		domain.FieldLuggageTagNumber:    "AH",
		domain.FieldCompanion:           "AI",
		domain.FieldTotalAdultCount:     "AJ",
		domain.FieldTotalChildCount:     "AK",
		domain.FieldFaceTowelCount:      "AL",
		domain.FieldBathTowelCount:      "AM",
		domain.FieldDiscountApplied:     "AN",
		domain.FieldPartnerHotel:        "AO",
		domain.FieldCreatedBy:           "AP",
		domain.FieldComeFrom:            "AQ",
		domain.FieldUnavailableBaths:    "AR",
	},
	VersionCurrent: {
		domain.FieldRentalID:            "A",
		domain.FieldStatus:              "B",
		domain.FieldSubmittedAt:         "C",
		domain.FieldLastUpdated:         "D",
		domain.FieldCustomerName:        "E",
		domain.FieldCustomerContact:     "F",
		domain.FieldDocumentType:        "G",
		domain.FieldComeFrom:            "H",
		domain.FieldServiceType:         "I",
		domain.FieldRentalPlan:          "J",
		domain.FieldTotalPrice:          "K",
		domain.FieldExpectedReturn:      "L",
		domain.FieldAgreement:           "M",
		domain.FieldCheckInStaff:        "N",
		domain.FieldCheckedInAt:         "O",
		domain.FieldPhotoFileID:         "P",
		domain.FieldVerified:            "Q",
		domain.FieldStoredAt:            "R",
		domain.FieldReturnedAt:          "S",
		domain.FieldReturnStaff:         "T",
		domain.FieldGoodCondition:       "U",
		domain.FieldReturnNotes:         "V",
		domain.FieldIsLate:              "W",
		domain.FieldMinutesLate:         "X",
		domain.FieldTroubleNotes:        "Y",
		domain.FieldTroubleResolved:     "Z",
		domain.FieldDamageReported:      "AA",
		domain.FieldRepairRequired:      "AB",
		domain.FieldReplacementRequired: "AC",
		domain.FieldBikeCount:           "AD",
		domain.FieldBikeNumber:          "AE",
		domain.FieldOnsenKeyNumber:      "AF",
		domain.FieldLuggageCount:        "AG",
		domain.FieldLuggageTagNumber:    "AH",
		domain.FieldMaleCount:           "AI",
		domain.FieldFemaleCount:         "AJ",
		domain.FieldTotalAdultCount:     "AK",
		domain.FieldBoyCount:            "AL",
		domain.FieldGirlCount:           "AM",
		domain.FieldTotalChildCount:     "AN",
		domain.FieldKidsCount:           "AO",
		domain.FieldFaceTowelCount:      "AP",
		domain.FieldBathTowelCount:      "AQ",
		domain.FieldPartnerHotel:        "AR",
		domain.FieldCreatedBy:           "AS",
	},
}

var commonFields = []string{
	domain.FieldRentalID,
	domain.FieldStatus,
	domain.FieldSubmittedAt,
	domain.FieldLastUpdated,
	domain.FieldCustomerName,
	domain.FieldCustomerContact,
	domain.FieldServiceType,
	domain.FieldTotalPrice,
	domain.FieldCreatedBy,
}

var bikeCheckIn = []string{
	domain.FieldStatus, domain.FieldCheckInStaff, domain.FieldCheckedInAt, domain.FieldPhotoFileID,
	domain.FieldVerified, domain.FieldDocumentType, domain.FieldAgreement, domain.FieldRentalPlan,
	domain.FieldExpectedReturn, domain.FieldBikeCount, domain.FieldBikeNumber, domain.FieldLastUpdated,
}

var onsenCheckIn = []string{
	domain.FieldStatus, domain.FieldCheckInStaff, domain.FieldCheckedInAt, domain.FieldPhotoFileID,
	domain.FieldVerified, domain.FieldDocumentType, domain.FieldAgreement, domain.FieldComeFrom,
	domain.FieldOnsenKeyNumber, domain.FieldMaleCount, domain.FieldFemaleCount, domain.FieldTotalAdultCount,
	domain.FieldBoyCount, domain.FieldGirlCount, domain.FieldTotalChildCount, domain.FieldKidsCount,
	domain.FieldFaceTowelCount, domain.FieldBathTowelCount, domain.FieldLastUpdated,
}

var luggageCheckIn = []string{
	domain.FieldStatus, domain.FieldCheckInStaff, domain.FieldCheckedInAt, domain.FieldPhotoFileID, domain.FieldVerified,
	domain.FieldExpectedReturn, domain.FieldLuggageCount, domain.FieldLuggageTagNumber,
	domain.FieldPartnerHotel, domain.FieldLastUpdated,
}

var fullReturn = []string{
	domain.FieldStatus, domain.FieldReturnStaff, domain.FieldReturnedAt, domain.FieldGoodCondition,
	domain.FieldReturnNotes, domain.FieldIsLate, domain.FieldMinutesLate, domain.FieldDamageReported,
	domain.FieldRepairRequired, domain.FieldReplacementRequired, domain.FieldLastUpdated,
}

var luggageReturn = []string{
	domain.FieldStatus, domain.FieldReturnStaff, domain.FieldReturnedAt, domain.FieldReturnNotes,
	domain.FieldIsLate, domain.FieldMinutesLate, domain.FieldLastUpdated,
}

var troubleFields = []string{
	domain.FieldStatus, domain.FieldTroubleNotes, domain.FieldTroubleResolved, domain.FieldLastUpdated,
}

var storageFields = []string{
	domain.FieldStatus, domain.FieldStoredAt, domain.FieldStorageStaff, domain.FieldLastUpdated,
}

var operationGroups = map[Operation]map[domain.ServiceType][]string{
	OpCheckIn: {
		domain.ServiceBike:    bikeCheckIn,
		domain.ServiceOnsen:   onsenCheckIn,
		domain.ServiceLuggage: luggageCheckIn,
	},
	OpReturn: {
		domain.ServiceBike:    fullReturn,
		domain.ServiceOnsen:   fullReturn,
		domain.ServiceLuggage: luggageReturn,
	},
	OpTrouble: {
		domain.ServiceBike:    troubleFields,
		domain.ServiceOnsen:   troubleFields,
		domain.ServiceLuggage: troubleFields,
	},
	OpStorage: {
		domain.ServiceLuggage: storageFields,
	},
}
