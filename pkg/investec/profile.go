package investec

// Profile groups accounts under one authorization context.
type Profile struct {
	ProfileID      string
	ProfileName    string
	DefaultProfile bool
}

func parseProfile(data map[string]interface{}) Profile {
	return Profile{
		ProfileID:      readString(data, "profileId"),
		ProfileName:    readString(data, "profileName"),
		DefaultProfile: readBool(data, "defaultProfile", false),
	}
}

// AuthorisationPeriod is a window during which a payment can be authorised.
type AuthorisationPeriod struct {
	ID          string
	Description string
}

// Authoriser is a person allowed to sign off payments.
type Authoriser struct {
	AuthoriserID string
	Name         string
}

// AuthorisationSetup describes the multi-party sign-off rules for an
// account. The lists are always present, possibly empty - never nil.
type AuthorisationSetup struct {
	NumberOfAuthorisationRequired string
	Period                        []AuthorisationPeriod
	AuthorisersListA              []Authoriser
	AuthorisersListB              []Authoriser
}

func parseAuthorisationSetup(data map[string]interface{}) AuthorisationSetup {
	setup := AuthorisationSetup{
		NumberOfAuthorisationRequired: readString(data, "numberOfAuthorisationRequired"),
		Period:                        []AuthorisationPeriod{},
		AuthorisersListA:              []Authoriser{},
		AuthorisersListB:              []Authoriser{},
	}

	if raw, ok := data["period"].([]interface{}); ok {
		for _, entry := range raw {
			if item, ok := entry.(map[string]interface{}); ok {
				setup.Period = append(setup.Period, AuthorisationPeriod{
					ID:          readString(item, "id"),
					Description: readString(item, "description"),
				})
			}
		}
	}

	setup.AuthorisersListA = parseAuthorisers(data, "authorisersListA")
	setup.AuthorisersListB = parseAuthorisers(data, "authorisersListB")

	return setup
}

func parseAuthorisers(data map[string]interface{}, key string) []Authoriser {
	authorisers := []Authoriser{}
	if raw, ok := data[key].([]interface{}); ok {
		for _, entry := range raw {
			if item, ok := entry.(map[string]interface{}); ok {
				authorisers = append(authorisers, Authoriser{
					AuthoriserID: readString(item, "authoriserId"),
					Name:         readString(item, "name"),
				})
			}
		}
	}

	return authorisers
}
