package http

import "frontdesk-rental-backend/internal/service"

// Usage documents for the POST-only lifecycle endpoints, returned with the 405
// a GET receives.
var (
	checkInUsage = map[string]any{
		"method":         "POST",
		"requiredFields": []string{"rentalID", "staffName", "photoData", "photoFileName", "photoMimeType"},
		"serviceSpecificFields": map[string][]string{
			"Bike":    {"bikeNumbers (array)"},
			"Onsen":   {"onsenKeyNumbers (array)"},
			"Luggage": {"luggageTagNumbers (array of strings)"},
		},
		"optionalFields": []string{"notes", "customerPresent", "verified"},
		"photoFormats":   []string{"image/jpeg", "image/png"},
		"statusTransitions": map[string]string{
			"Bike":    "Pending → Active",
			"Onsen":   "Pending → Active",
			"Luggage": "Pending → Awaiting_Storage",
		},
	}

	moveToActiveUsage = map[string]any{
		"method":      "POST",
		"description": "Complete physical luggage storage and move rental to Active status",
		"requiredFields": []string{
			"rentalID (luggage storage rental ID)",
			"staffName (floor staff completing storage)",
		},
		"optionalFields": []string{
			"storageLocation (physical storage area)",
			"notes (storage notes)",
			"itemCondition (condition assessment)",
		},
		"validStorageAreas":      service.StorageLocations,
		"statusTransition":       "Awaiting_Storage → Active",
		"serviceTypeRestriction": "Luggage storage only",
		"workflow": map[string]string{
			"step1": "Customer registers luggage storage",
			"step2": "Counter staff processes payment and assigns tags",
			"step3": "Status becomes Awaiting_Storage",
			"step4": "Floor staff physically stores items",
			"step5": "This endpoint moves status to Active",
			"step6": "Customer can now pick up items",
		},
	}

	returnUsage = map[string]any{
		"method":      "POST",
		"description": "Process returns/pickups from Active rental status",
		"requiredFields": []string{
			"rentalID (active rental to return)",
			"returnStaff (staff processing return)",
		},
		"conditionalFields": map[string][]string{
			"Bike":    {"bikeNumbers (array of bikes being returned)"},
			"Onsen":   {"onsenKeyNumbers (array of keys being returned)"},
			"Luggage": {"customerVerified (boolean - identity confirmed)"},
		},
		"optionalFields": []string{
			"goodCondition (boolean - true if item in good condition)",
			"returnNotes (return notes)",
			"customerVerified (for luggage pickup)",
		},
		"lateFeeCalculation": map[string]string{
			"Bike":    "¥500 per 30-minute increment after expected return",
			"Onsen":   "No late fees",
			"Luggage": "No late fees",
		},
		"statusTransitions": map[string]string{
			"Bike":    "Active → Closed",
			"Onsen":   "Active → Closed",
			"Luggage": "Active → Closed (Picked Up)",
		},
		"resourceRelease": "Bikes and onsen keys become available for new rentals",
	}

	reportTroubleUsage = map[string]any{
		"method":           "POST",
		"description":      "Flag an active or pending rental as troubled",
		"requiredFields":   []string{"rentalID", "notes (what went wrong)"},
		"optionalFields":   []string{"staffName (staff reporting the issue)"},
		"statusTransition": "Pending/Awaiting_Storage/Active → Troubled",
	}

	resolveTroubleUsage = map[string]any{
		"method":           "POST",
		"description":      "Resolve trouble status and return rental to Active status",
		"requiredFields":   []string{"rentalID (troubled rental ID)"},
		"optionalFields":   []string{"notes (resolution notes)"},
		"statusTransition": "Troubled → Active",
		"workflow": map[string]string{
			"step1": "Rental becomes troubled due to issues",
			"step2": "Staff investigates and resolves the problem",
			"step3": "This endpoint moves status back to Active",
			"step4": "Customer can continue using the service",
		},
	}
)
